package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bartoszbak/mcqs-helper/internal/logging"
)

const userAgent = "mcqs-helper/1.0 (Gemini Request)"

// Client handles Gemini API operations
type Client struct {
	apiKey         string
	model          string
	defaultSubject string
	baseURL        string
	httpClient     *http.Client
}

// NewClient creates a new Gemini API client
func NewClient(apiKey, model, defaultSubject string) *Client {
	return &Client{
		apiKey:         apiKey,
		model:          model,
		defaultSubject: defaultSubject,
		baseURL:        "https://generativelanguage.googleapis.com/v1beta/models",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// geminiRequest represents the request structure for Gemini API
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// GenerateSubject produces a short subject line summarizing the given
// feedback. It never fails: any error along the way falls back to the
// default subject line so that email sending is never blocked.
func (c *Client) GenerateSubject(ctx context.Context, feedbackHTML string) string {
	log := logging.GetLogger()

	if c.apiKey == "" {
		log.Warnln("Gemini API key not configured, using default subject line")
		return c.defaultSubject
	}

	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: c.buildPrompt(feedbackHTML)},
				},
			},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: 20,
			Temperature:     0.7,
		},
	}

	body, err := json.Marshal(geminiReq)
	if err != nil {
		log.Errorf("Marshaling Gemini request: %v", err)
		return c.defaultSubject
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		log.Errorf("Creating Gemini request: %v", err)
		return c.defaultSubject
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Errorf("Error communicating with Gemini: %v", err)
		return c.defaultSubject
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("Gemini API returned status %d, using default subject line", resp.StatusCode)
		return c.defaultSubject
	}

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Errorf("Non-JSON response from Gemini: %v", err)
		return c.defaultSubject
	}

	subject := extractFirstText(decoded)
	if subject == "" {
		log.Warnln("No extractable subject in Gemini response, falling back to default")
		return c.defaultSubject
	}

	return subject
}

// buildPrompt creates the subject-line prompt for the Gemini API
func (c *Client) buildPrompt(feedbackHTML string) string {
	return "Please create a very short and concise email subject line " +
		"(max 5-7 words) summarizing the following user feedback. " +
		"Only return the subject line text itself, without any prefixes like " +
		"'Subject:' or quotation marks.\n\nFeedback:\n" + feedbackHTML
}

// extractFirstText returns the first non-empty text chunk from a Gemini
// response. Each candidate holds either a "content" or "message" object
// whose ordered "parts" carry the text; some experimental endpoints put
// text at the top level instead.
func extractFirstText(resp map[string]interface{}) string {
	candidates, _ := resp["candidates"].([]interface{})
	for _, cand := range candidates {
		candMap, ok := cand.(map[string]interface{})
		if !ok {
			continue
		}

		content, ok := candMap["content"].(map[string]interface{})
		if !ok {
			if content, ok = candMap["message"].(map[string]interface{}); !ok {
				continue
			}
		}

		parts, _ := content["parts"].([]interface{})
		for _, part := range parts {
			partMap, ok := part.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := partMap["text"].(string); ok {
				if trimmed := strings.TrimSpace(text); trimmed != "" {
					return trimmed
				}
			}
		}
	}

	if text, ok := resp["text"].(string); ok {
		return strings.TrimSpace(text)
	}

	return ""
}
