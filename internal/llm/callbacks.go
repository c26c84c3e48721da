package llm

import (
	"context"
	"strings"

	"github.com/hession/reagent/internal/logger"
)

// Handler receives completion lifecycle events. Handlers only observe;
// nothing they return affects the request.
type Handler interface {
	OnRequestStart(ctx context.Context, prompts []string)
	OnNewToken(token string)
	OnResponse(text string)
	OnError(err error)
}

// LoggingHandler writes every event to the default logger
type LoggingHandler struct {
	Name string
	log  *logger.Scope
}

// NewLoggingHandler creates a logging handler whose entries carry client=name
func NewLoggingHandler(name string) *LoggingHandler {
	return &LoggingHandler{Name: name, log: logger.With("client", name)}
}

func (h *LoggingHandler) OnRequestStart(_ context.Context, prompts []string) {
	h.log.Info("request started with %d prompt(s)", len(prompts))
	for i, p := range prompts {
		h.log.Debug("prompt %d:\n%s", i, p)
	}
}

func (h *LoggingHandler) OnNewToken(token string) {
	h.log.Debug("token: %q", token)
}

func (h *LoggingHandler) OnResponse(text string) {
	h.log.Info("response received (%d chars)", len(text))
	h.log.Debug("response:\n%s", strings.TrimSpace(text))
}

func (h *LoggingHandler) OnError(err error) {
	h.log.Error("request failed: %v", err)
}
