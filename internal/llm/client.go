package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client LLM client for OpenAI-compatible chat completion endpoints
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	stop        []string
	stream      bool
	handlers    []Handler
	httpClient  *http.Client
}

// Message message structure
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse chat response
type ChatResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// StreamHandler stream response handler
type StreamHandler func(content string)

// chatRequest chat request
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	Stream      bool      `json:"stream"`
}

// chatChoice one choice of a completion
type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	Delta        Message `json:"delta"`
	FinishReason string  `json:"finish_reason"`
}

// chatResponse API response
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Option client configuration option
type Option func(*Client)

// WithStop sets the stop sequences sent with every request
func WithStop(stop ...string) Option {
	return func(c *Client) {
		c.stop = append([]string(nil), stop...)
	}
}

// WithStreaming requests server-sent events so handlers see each token
func WithStreaming(stream bool) Option {
	return func(c *Client) {
		c.stream = stream
	}
}

// WithHandlers registers callback handlers
func WithHandlers(handlers ...Handler) Option {
	return func(c *Client) {
		c.handlers = append(c.handlers, handlers...)
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new LLM client
func New(apiKey, baseURL, model string, temperature float64, maxTokens int, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends prompt as a single user message and returns the generated
// text, cut at the first stop sequence
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompts := []string{prompt}
	for _, h := range c.handlers {
		h.OnRequestStart(ctx, prompts)
	}

	messages := []Message{{Role: "user", Content: prompt}}

	var (
		resp *ChatResponse
		err  error
	)
	var ts *tokenStream
	if c.stream {
		ts = &tokenStream{stop: c.stop, emit: c.emitToken}
		resp, err = c.ChatStream(ctx, messages, ts.write)
	} else {
		resp, err = c.Chat(ctx, messages)
	}
	if err != nil {
		for _, h := range c.handlers {
			h.OnError(err)
		}
		return "", err
	}

	text := TruncateAtStop(resp.Content, c.stop)
	if ts != nil {
		ts.flush(text)
	}
	for _, h := range c.handlers {
		h.OnResponse(text)
	}
	return text, nil
}

func (c *Client) emitToken(token string) {
	for _, h := range c.handlers {
		h.OnNewToken(token)
	}
}

// tokenStream forwards streamed tokens up to the first stop sequence.
// A tail that could still grow into a stop sequence is held back until
// the next token or the end of the stream decides it.
type tokenStream struct {
	stop    []string
	emit    func(token string)
	buf     strings.Builder
	emitted int
}

func (s *tokenStream) write(token string) {
	s.buf.WriteString(token)
	text := s.buf.String()
	visible := TruncateAtStop(text, s.stop)
	if len(visible) == len(text) {
		visible = visible[:len(visible)-partialStopLen(visible, s.stop)]
	}
	s.forward(visible)
}

// flush forwards whatever of the final text is still held back
func (s *tokenStream) flush(text string) {
	s.forward(text)
}

func (s *tokenStream) forward(visible string) {
	if len(visible) > s.emitted {
		s.emit(visible[s.emitted:])
		s.emitted = len(visible)
	}
}

// partialStopLen returns the length of the longest suffix of text that is
// a proper prefix of a stop sequence
func partialStopLen(text string, stop []string) int {
	longest := 0
	for _, seq := range stop {
		for n := len(seq) - 1; n > longest; n-- {
			if strings.HasSuffix(text, seq[:n]) {
				longest = n
				break
			}
		}
	}
	return longest
}

// Chat sends a chat request
func (c *Client) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	return c.chat(ctx, messages, false, nil)
}

// ChatStream sends a streaming chat request
func (c *Client) ChatStream(ctx context.Context, messages []Message, handler StreamHandler) (*ChatResponse, error) {
	return c.chat(ctx, messages, true, handler)
}

// chat internal chat implementation
func (c *Client) chat(ctx context.Context, messages []Message, stream bool, handler StreamHandler) (*ChatResponse, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stop:        c.stop,
		Stream:      stream,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned error (status %d): %s", resp.StatusCode, string(body))
	}

	if stream {
		return c.handleStreamResponse(resp.Body, handler)
	}

	return c.handleResponse(resp.Body)
}

// handleResponse handles normal response
func (c *Client) handleResponse(body io.Reader) (*ChatResponse, error) {
	var resp chatResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("API returned empty response")
	}

	choice := resp.Choices[0]
	return &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}, nil
}

// handleStreamResponse handles streaming response
func (c *Client) handleStreamResponse(body io.Reader, handler StreamHandler) (*ChatResponse, error) {
	reader := bufio.NewReader(body)
	var fullContent strings.Builder
	var finishReason string

	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read streaming response: %w", err)
		}
		done := err == io.EOF

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var resp chatResponse
			if jsonErr := json.Unmarshal([]byte(data), &resp); jsonErr == nil {
				if resp.Error != nil {
					return nil, fmt.Errorf("API error: %s", resp.Error.Message)
				}
				if len(resp.Choices) > 0 {
					choice := resp.Choices[0]
					if choice.Delta.Content != "" {
						fullContent.WriteString(choice.Delta.Content)
						if handler != nil {
							handler(choice.Delta.Content)
						}
					}
					if choice.FinishReason != "" {
						finishReason = choice.FinishReason
					}
				}
			}
		}

		if done {
			break
		}
	}

	return &ChatResponse{
		Content:      fullContent.String(),
		FinishReason: finishReason,
	}, nil
}

// TruncateAtStop cuts text at the earliest occurrence of any stop sequence
func TruncateAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if idx := strings.Index(text, s); idx != -1 && idx < cut {
			cut = idx
		}
	}
	return text[:cut]
}
