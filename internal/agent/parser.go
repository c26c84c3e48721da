package agent

import (
	"regexp"
	"strings"
)

const (
	// FinalAnswerMarker introduces the model's answer
	FinalAnswerMarker = "Final Answer:"

	// OutputKey is the return value key of a Finish
	OutputKey = "output"
)

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyPattern  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

const (
	reasonBoth          = "produced both a final answer and a parse-able action"
	reasonMissingAction = "Invalid Format: Missing 'Action:' after 'Thought:'"
	reasonMissingInput  = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	reasonUnknown       = "neither an action nor a final answer"
)

// Parse interprets one completion as an *Action or a *Finish.
// Text carrying both forms, or neither, yields a *ParseError.
func Parse(text string) (Step, error) {
	includesAnswer := strings.Contains(text, FinalAnswerMarker)

	if m := actionPattern.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			return nil, &ParseError{Text: text, Reason: reasonBoth}
		}
		input := strings.Trim(m[2], " ")
		input = strings.Trim(input, `"`)
		return &Action{
			Tool:      strings.TrimSpace(m[1]),
			ToolInput: input,
			RawLog:    text,
		}, nil
	}

	if includesAnswer {
		parts := strings.Split(text, FinalAnswerMarker)
		return &Finish{
			ReturnValues: map[string]string{OutputKey: strings.TrimSpace(parts[len(parts)-1])},
			RawLog:       text,
		}, nil
	}

	switch {
	case !actionOnlyPattern.MatchString(text):
		return nil, &ParseError{Text: text, Reason: reasonMissingAction}
	case !actionInputPattern.MatchString(text):
		return nil, &ParseError{Text: text, Reason: reasonMissingInput}
	default:
		return nil, &ParseError{Text: text, Reason: reasonUnknown}
	}
}
