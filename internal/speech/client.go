package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultBaseURL     = "https://api.voicebrief.dev/v1"
	speechMaxRetries   = 3
	speechInitialDelay = 1 * time.Second
)

// Client calls the speech-to-text/LLM analysis service.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Transcript is the result of transcribing an audio artifact.
type Transcript struct {
	Text            string `json:"text"`
	Language        string `json:"language,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// SuggestedItem is an action item proposed by the analysis service.
type SuggestedItem struct {
	Title        string `json:"title"`
	AssigneeHint string `json:"assignee_hint,omitempty"`
}

// Analysis is the structured result of analyzing a transcript.
type Analysis struct {
	Summary        string          `json:"summary"`
	KeyPoints      []string        `json:"key_points"`
	SentimentLabel string          `json:"sentiment_label"`
	SentimentScore float64         `json:"sentiment_score"`
	QualityScore   float64         `json:"quality_score"`
	SuggestedTodos []SuggestedItem `json:"suggested_todos"`
}

type analyzeRequest struct {
	Transcript string `json:"transcript"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a speech service client. An empty baseURL uses the
// production endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Transcribe uploads an audio artifact and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, fileName, language string) (*Transcript, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("speech API key not set")
	}

	// Build multipart request body once; retries reuse the same bytes.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, err
		}
	}

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	respBody, err := c.post(ctx, c.baseURL+"/transcriptions", writer.FormDataContentType(), body.Bytes())
	if err != nil {
		return nil, err
	}

	var transcript Transcript
	if err := json.Unmarshal(respBody, &transcript); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	if transcript.Text == "" {
		return nil, fmt.Errorf("transcription returned empty text")
	}

	return &transcript, nil
}

// Analyze derives summary, key points, sentiment, quality score and
// suggested action items from a transcript.
func (c *Client) Analyze(ctx context.Context, transcript string) (*Analysis, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("speech API key not set")
	}
	if transcript == "" {
		return nil, fmt.Errorf("no transcript provided")
	}

	body, err := json.Marshal(analyzeRequest{Transcript: transcript})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, c.baseURL+"/analyses", "application/json", body)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(respBody, &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	analysis.normalize()

	return &analysis, nil
}

// normalize validates the duck-typed service payload at the boundary so the
// rest of the system can rely on well-formed values.
func (a *Analysis) normalize() {
	switch a.SentimentLabel {
	case "positive", "neutral", "negative":
	default:
		a.SentimentLabel = "neutral"
	}
	if a.SentimentScore < 0 {
		a.SentimentScore = 0
	}
	if a.SentimentScore > 1 {
		a.SentimentScore = 1
	}
	if a.QualityScore < 0 {
		a.QualityScore = 0
	}
	if a.QualityScore > 100 {
		a.QualityScore = 100
	}

	items := a.SuggestedTodos[:0]
	for _, item := range a.SuggestedTodos {
		if item.Title != "" {
			items = append(items, item)
		}
	}
	a.SuggestedTodos = items
}

// post sends a request with retry and exponential backoff on rate limits
// and server errors.
func (c *Client) post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < speechMaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2s, 4s
			delay := time.Duration(math.Pow(2, float64(attempt))) * speechInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", contentType)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var svcErr apiError
			if json.Unmarshal(respBody, &svcErr) == nil && svcErr.Error.Message != "" {
				lastErr = fmt.Errorf("speech API error (%d): %s", resp.StatusCode, svcErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("speech API error (%d): %s", resp.StatusCode, string(respBody))
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}

			return nil, lastErr
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", speechMaxRetries, lastErr)
}
