package tools

import (
	"context"
	"strconv"
	"unicode/utf8"
)

// TextLengthTool counts the characters of its input
type TextLengthTool struct{}

// NewTextLengthTool creates a new text length tool
func NewTextLengthTool() *TextLengthTool {
	return &TextLengthTool{}
}

func (t *TextLengthTool) Name() string {
	return "get_text_length"
}

func (t *TextLengthTool) Description() string {
	return "Returns the length of a text by characters"
}

// Invoke returns the number of Unicode code points in input
func (t *TextLengthTool) Invoke(_ context.Context, input string) (string, error) {
	return strconv.Itoa(utf8.RuneCountInString(input)), nil
}
