package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"AnesthUpdate/internal/config"
	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

// Client implements the summarize collaborator over the Gemini
// generateContent REST API. It never fails the run: any error yields the
// fixed sentinel record. Calls are paced to one per second because the
// upstream is rate-limited.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GeminiConfig, logger *slog.Logger) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		logger:       logger,
	}
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != "" && c.model != ""
}

// Summarize produces the structured clinical summary for one candidate. On
// any failure the sentinel error record is returned instead.
func (c *Client) Summarize(ctx context.Context, candidate domain.Candidate) domain.Paper {
	paper, err := c.summarize(ctx, candidate)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to summarize paper", "pmid", candidate.ID, "error", err)
		}
		return domain.ErrorPaper(candidate)
	}
	return paper
}

type summaryPayload struct {
	TitleJa        string `json:"title_ja"`
	Summary        string `json:"summary"`
	ClinicalAction string `json:"clinical_action"`
	Importance     int    `json:"importance"`
}

func (c *Client) summarize(ctx context.Context, candidate domain.Candidate) (domain.Paper, error) {
	if !c.Configured() {
		return domain.Paper{}, fmt.Errorf("gemini client misconfigured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Paper{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("summarizing paper", "pmid", candidate.ID, "model", c.model)
	}

	prompt := fmt.Sprintf("Title: %s\nAbstract: %s\n", candidate.Title, candidate.Abstract)
	body, err := json.Marshal(map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": c.systemPrompt}},
		},
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"temperature":      c.temperature,
		},
	})
	if err != nil {
		return domain.Paper{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimSuffix(c.endpoint, "/"), c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Paper{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Paper{}, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var generated struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return domain.Paper{}, fmt.Errorf("decode response: %w", err)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return domain.Paper{}, fmt.Errorf("empty response from gemini")
	}

	var payload summaryPayload
	text := generated.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Paper{}, fmt.Errorf("decode summary JSON: %w", err)
	}
	if payload.Importance < 1 {
		payload.Importance = 1
	}

	return domain.Paper{
		ID:             candidate.ID,
		OriginalTitle:  candidate.Title,
		TitleJa:        payload.TitleJa,
		Summary:        payload.Summary,
		ClinicalAction: payload.ClinicalAction,
		Importance:     payload.Importance,
		Abstract:       candidate.Abstract,
		URL:            candidate.URL,
		PubDate:        candidate.PubDate,
	}, nil
}
