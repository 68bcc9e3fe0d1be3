// internal/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
)

// Completer sends one system+user prompt pair and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client talks to an OpenAI compatible chat completions endpoint.
type Client struct {
	cfg    config.LLMConfig
	http   *http.Client
	logger *logrus.Entry
}

func NewClient(cfg config.LLMConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.WithField("component", "llm_client"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.cfg.Enabled() {
		return "", &SummarizerError{Kind: ErrMissingCredentials, Err: errors.New("no API key configured")}
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &SummarizerError{Kind: ErrInvalidResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", classifyTransportError(err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode == http.StatusTooManyRequests ||
		(decoded.Error != nil && (decoded.Error.Code == "insufficient_quota" || decoded.Error.Type == "insufficient_quota")) {
		return "", &SummarizerError{Kind: ErrQuotaExceeded, Err: fmt.Errorf("provider returned %d: %s", resp.StatusCode, providerMessage(decoded, body))}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &SummarizerError{Kind: ErrInvalidResponse, Err: fmt.Errorf("provider returned %d: %s", resp.StatusCode, providerMessage(decoded, body))}
	}
	if decodeErr != nil {
		return "", &SummarizerError{Kind: ErrInvalidResponse, Err: fmt.Errorf("decode completion: %w", decodeErr)}
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", &SummarizerError{Kind: ErrInvalidResponse, Err: errors.New("completion has no content")}
	}

	c.logger.WithFields(logrus.Fields{
		"model":        c.cfg.Model,
		"prompt_chars": len(prompt),
	}).Debug("completion received")

	return decoded.Choices[0].Message.Content, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &SummarizerError{Kind: ErrTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &SummarizerError{Kind: ErrTimeout, Err: err}
	}
	return &SummarizerError{Kind: ErrInvalidResponse, Err: err}
}

func providerMessage(decoded chatResponse, body []byte) string {
	if decoded.Error != nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
