package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "mcqs-helper/1.0 (Perplexity Request)"

// defaultModel is the fixed chat-completion model used for explanations.
const defaultModel = "sonar"

// Client handles the Perplexity chat completion API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Perplexity API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: "https://api.perplexity.ai",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// chatRequest is an OpenAI-style chat completion payload
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the provider's raw reply. The caller relays it without
// re-serialization, so status, content type and body stay untouched.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Explain asks Perplexity why correctAnswer is the answer to question.
// Any response the provider returns, 2xx or not, comes back as a
// Response; only transport failures produce an error.
func (c *Client) Explain(ctx context.Context, question, correctAnswer string) (*Response, error) {
	prompt := fmt.Sprintf(
		"Explain clearly, simply and not too verbosely why the answer to the question %q is %q. "+
			"Respond in plain text without any markdown formatting.",
		question, correctAnswer)

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        respBody,
	}, nil
}
