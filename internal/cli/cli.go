package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/hession/reagent/internal/agent"
	"github.com/hession/reagent/internal/config"
	"github.com/hession/reagent/internal/llm"
	"github.com/hession/reagent/internal/logger"
	"github.com/hession/reagent/internal/tools"
)

const (
	Version = "0.1.0"

	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// exampleQuestions are offered as completions at the question prompt
var exampleQuestions = []prompt.Suggest{
	{Text: "write a paragraph about dog and then count the length of characters?", Description: "generate, then count"},
	{Text: "count the letters in 'cat'", Description: "single tool call"},
	{Text: "how many characters are in the word 'supercalifragilistic'?", Description: "single tool call"},
}

// Options options for one run
type Options struct {
	Question      string    // Asked interactively when empty
	MaxIterations int       // Overrides agent.max_iterations when positive
	Verbose       bool      // Print raw completion text of each step
	Out           io.Writer // Console output, defaults to stdout
}

// Run answers one question with the ReAct loop and prints every step
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if !cfg.IsAPIKeyConfigured() {
		if err := promptAPIKey(out, cfg); err != nil {
			return err
		}
	}

	promptCfg, err := config.LoadPromptConfig()
	if err != nil {
		return fmt.Errorf("failed to load prompt config: %w", err)
	}

	if opts.MaxIterations > 0 {
		cfg.Agent.MaxIterations = opts.MaxIterations
	}

	ag, err := NewAgent(cfg, promptCfg, out, opts.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	question := strings.TrimSpace(opts.Question)
	if question == "" {
		question = askQuestion(out, ag.Tools())
		if question == "" {
			return fmt.Errorf("question cannot be empty")
		}
	}

	fmt.Fprintf(out, "%sQuestion:%s %s\n\n", colorCyan, colorReset, question)

	result, err := ag.Run(ctx, question)
	if err != nil {
		return err
	}

	printResult(out, result)
	return nil
}

// NewAgent wires the completion clients, the tool registry and the loop
func NewAgent(cfg *config.Config, promptCfg *config.PromptConfig, out io.Writer, verbose bool) (*agent.Agent, error) {
	stop := cfg.Agent.Stop
	if len(stop) == 0 {
		stop = []string{config.DefaultStopSequence}
	}

	// Both clients share one connection pool
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	reasoner := llm.New(
		cfg.Model.APIKey,
		cfg.Model.BaseURL,
		cfg.Model.Model,
		cfg.Model.Temperature,
		cfg.Model.MaxTokens,
		llm.WithStop(stop...),
		llm.WithStreaming(cfg.Model.Stream),
		llm.WithHTTPClient(httpClient),
		llm.WithHandlers(llm.NewLoggingHandler("agent")),
	)

	// The paragraph writer talks to the same model without a stop sequence
	generator := llm.New(
		cfg.Model.APIKey,
		cfg.Model.BaseURL,
		cfg.Model.Model,
		cfg.Generation.Temperature,
		cfg.Generation.MaxTokens,
		llm.WithHTTPClient(httpClient),
		llm.WithHandlers(llm.NewLoggingHandler("generate_text")),
	)

	registry := tools.NewDefaultRegistry(generator, promptCfg.GetGenerateTemplate())

	return agent.New(
		reasoner,
		registry,
		promptCfg.GetReActTemplate(),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithMaxDuration(cfg.MaxDuration()),
		agent.WithStepHandler(func(step agent.Step) { printStep(out, step, verbose) }),
		agent.WithObservationHandler(func(action *agent.Action, observation string) {
			printObservation(out, action, observation)
		}),
	)
}

// ListTools prints the registered tools as the prompt renders them
func ListTools(out io.Writer, cfg *config.Config) error {
	promptCfg, err := config.LoadPromptConfig()
	if err != nil {
		return fmt.Errorf("failed to load prompt config: %w", err)
	}
	ag, err := NewAgent(cfg, promptCfg, io.Discard, false)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%sAvailable Tools:%s\n", colorYellow, colorReset)
	for _, tool := range ag.Tools().List() {
		fmt.Fprintf(out, "  • %-16s - %s\n", tool.Name(), tool.Description())
	}
	return nil
}

// promptAPIKey asks for the API key and saves it to the config file
func promptAPIKey(out io.Writer, cfg *config.Config) error {
	printAPIKeyNotice(out)

	apiKey := strings.TrimSpace(prompt.Input("Please enter your OpenAI API Key: ", noSuggestions))
	if apiKey == "" {
		return fmt.Errorf("API Key cannot be empty")
	}

	cfg.Model.APIKey = apiKey
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n%s✅ API Key saved%s\n\n", colorGreen, colorReset)
	logger.Info("API key saved to config file")
	return nil
}

func printAPIKeyNotice(out io.Writer) {
	fmt.Fprintf(out, "%s⚠️  API Key not configured%s\n", colorYellow, colorReset)
	fmt.Fprintf(out, "%sSet %s, add it to .env, or enter it now%s\n\n", colorGray, config.OpenAIAPIKeyEnv, colorReset)
}

// askQuestion reads the question interactively
func askQuestion(out io.Writer, registry *tools.Registry) string {
	printQuestionHelp(out, registry)

	return strings.TrimSpace(prompt.Input("Question: ", questionCompleter,
		prompt.OptionTitle("reagent"),
		prompt.OptionPrefixTextColor(prompt.Green),
	))
}

func printQuestionHelp(out io.Writer, registry *tools.Registry) {
	fmt.Fprintf(out, "%sTools: %s%s\n", colorGray, strings.Join(registry.Names(), ", "), colorReset)
	fmt.Fprintf(out, "%sPress Tab for example questions%s\n", colorGray, colorReset)
}

func questionCompleter(d prompt.Document) []prompt.Suggest {
	return prompt.FilterFuzzy(exampleQuestions, d.TextBeforeCursor(), true)
}

func noSuggestions(prompt.Document) []prompt.Suggest {
	return nil
}

// printStep prints one parsed step
func printStep(out io.Writer, step agent.Step, verbose bool) {
	if verbose {
		fmt.Fprintf(out, "%s%s%s\n", colorGray, strings.TrimSpace(step.Log()), colorReset)
	}

	switch s := step.(type) {
	case *agent.Action:
		fmt.Fprintf(out, "%s🔧 Action:%s %s\n", colorYellow, colorReset, s)
	case *agent.Finish:
		fmt.Fprintf(out, "%s✅ Finish:%s %s\n", colorGreen, colorReset, s)
	}
}

// printObservation prints a tool's result
func printObservation(out io.Writer, action *agent.Action, observation string) {
	fmt.Fprintf(out, "%s   Observation (%s):%s %s\n\n", colorBlue, action.Tool, colorReset, strings.TrimSpace(observation))
}

// printResult prints the final return values, keys sorted
func printResult(out io.Writer, result *agent.Result) {
	keys := make([]string, 0, len(result.ReturnValues))
	for k := range result.ReturnValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "\n%sAnswer%s %s(%d iteration(s), run %s)%s\n", colorCyan, colorReset, colorGray, result.Iterations, result.RunID, colorReset)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, result.ReturnValues[k])
	}
}

// PrintError prints a run failure
func PrintError(out io.Writer, err error) {
	fmt.Fprintf(out, "%s❌ Error: %v%s\n", colorRed, err, colorReset)
}
