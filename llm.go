package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const llmSystemPrompt = "You are a financial assistant. Respond ONLY with JSON array or JSON object.\n" +
	"Fields: type (income|expense), amount (number), currency (string), date (YYYY-MM-DD), description (short)."

const defaultLLMTimeout = 6 * time.Second

// CompletionClient sends one prompt to a language model and returns the
// model's text answer.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ollamaClient talks to an Ollama-style completion endpoint over plain HTTP.
type ollamaClient struct {
	endpoint string
	model    string
	hc       *http.Client
}

func newOllamaClient(endpoint, model string) *ollamaClient {
	return &ollamaClient{
		endpoint: strings.TrimRight(endpoint, "/") + "/api/generate",
		model:    model,
		hc:       &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func (o *ollamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	payload := completionRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   256,
		Temperature: 0,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return "", errors.Wrap(err, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "completion request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read completion response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("completion endpoint returned %d: %s", resp.StatusCode, body)
	}
	return modelText(body), nil
}

// modelText digs the model's answer out of the response envelope. Ollama puts
// it in "response", chat-style endpoints in "message.content" or
// "choices[0].message.content". An unrecognized body is returned as-is so the
// balanced-span scanner still gets a chance at it.
func modelText(body []byte) string {
	var envelope struct {
		Response string `json:"response"`
		Message  struct {
			Content string `json:"content"`
		} `json:"message"`
		Choices []struct {
			Text    string `json:"text"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return string(body)
	}
	switch {
	case envelope.Response != "":
		return envelope.Response
	case envelope.Message.Content != "":
		return envelope.Message.Content
	case len(envelope.Choices) > 0 && envelope.Choices[0].Message.Content != "":
		return envelope.Choices[0].Message.Content
	case len(envelope.Choices) > 0 && envelope.Choices[0].Text != "":
		return envelope.Choices[0].Text
	}
	return string(body)
}

// claudeClient is the Claude-backed completion client.
type claudeClient struct {
	client anthropic.Client
	model  string
}

func newClaudeClient(apiKey, model string) *claudeClient {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &claudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *claudeClient) Complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "claude API call")
	}
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("empty response from claude API")
	}
	return text.String(), nil
}

// fallbackAdapter asks the model to structure a message the local extractor
// found nothing in. Every failure mode (network, timeout, malformed JSON, no
// amount) collapses to zero candidates; the caller degrades further on its
// own.
type fallbackAdapter struct {
	client  CompletionClient
	timeout time.Duration
	log     zerolog.Logger
}

func newFallbackAdapter(client CompletionClient, timeout time.Duration, log zerolog.Logger) *fallbackAdapter {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &fallbackAdapter{client: client, timeout: timeout, log: log}
}

func (f *fallbackAdapter) extract(ctx context.Context, text string, today time.Time) []Candidate {
	if f == nil || f.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	raw, err := f.client.Complete(ctx, llmSystemPrompt, text)
	if err != nil {
		f.log.Warn().Err(err).Msg("llm fallback failed")
		return nil
	}
	span := extractFirstJSON(raw)
	if span == "" {
		f.log.Warn().Str("response", truncate(raw, 200)).Msg("no JSON in llm response")
		return nil
	}
	return parseCandidateJSON(span, text, today)
}

// parseCandidateJSON decodes the extracted span. An object is accepted only
// with a numeric amount; an array is filtered down to such elements. Missing
// fields take defaults.
func parseCandidateJSON(span, source string, today time.Time) []Candidate {
	type rawCandidate struct {
		Type        string   `json:"type"`
		Amount      *float64 `json:"amount"`
		Currency    string   `json:"currency"`
		Date        string   `json:"date"`
		Description string   `json:"description"`
	}
	fill := func(rc rawCandidate) Candidate {
		c := Candidate{
			Type:        TypeExpense,
			Amount:      *rc.Amount,
			Currency:    rc.Currency,
			Date:        rc.Date,
			Description: rc.Description,
		}
		if rc.Type == string(TypeIncome) {
			c.Type = TypeIncome
		}
		if c.Currency == "" {
			c.Currency = currencyKZT
		}
		if c.Date == "" {
			c.Date = today.Format(dateLayout)
		}
		if c.Description == "" {
			c.Description = truncate(source, descLimit)
		}
		return c
	}

	if strings.HasPrefix(span, "[") {
		var arr []rawCandidate
		if err := json.Unmarshal([]byte(span), &arr); err != nil {
			return nil
		}
		var out []Candidate
		for _, rc := range arr {
			if rc.Amount != nil {
				out = append(out, fill(rc))
			}
		}
		return out
	}

	var rc rawCandidate
	if err := json.Unmarshal([]byte(span), &rc); err != nil || rc.Amount == nil {
		return nil
	}
	return []Candidate{fill(rc)}
}

// extractFirstJSON returns the first balanced {...} or [...] span of s,
// tracking string-literal and escape state so delimiters inside quoted
// strings don't count. Unbalanced input yields "".
func extractFirstJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := s[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
