package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// Config describes how to reach the zero-shot classification backend.
type Config struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration
}

// Client classifies messages with a hosted zero-shot model. All backend
// failures degrade to Fallback(); callers never see an error.
type Client struct {
	url    string
	token  string
	http   *http.Client
	logger *logging.Logger
}

// NewClient builds a classifier client. Model defaults to bart-large-mnli.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "facebook/bart-large-mnli"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/" + model,
		token:  cfg.Token,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type classifyRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []Label `json:"candidate_labels"`
	} `json:"parameters"`
}

type classifyResponse struct {
	Labels []Label   `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify ranks the message against the fixed label set.
func (c *Client) Classify(ctx context.Context, message string) Result {
	if strings.TrimSpace(message) == "" {
		return Fallback()
	}

	reqBody := classifyRequest{Inputs: message}
	reqBody.Parameters.CandidateLabels = Labels

	payload, err := json.Marshal(reqBody)
	if err != nil {
		c.logger.Error("intent: encode request failed", "error", err)
		return Fallback()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("intent: build request failed", "error", err)
		return Fallback()
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.token) != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("intent: classification backend unreachable", "error", err)
		return Fallback()
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("intent: read response failed", "error", err)
		return Fallback()
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("intent: classification backend error",
			"status", resp.Status,
			"body", strings.TrimSpace(string(data)),
		)
		return Fallback()
	}

	var out classifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("intent: decode response failed", "error", err)
		return Fallback()
	}
	return resultFrom(out)
}

// resultFrom converts a backend ranking to a Result, dropping any label not
// in the fixed set.
func resultFrom(out classifyResponse) Result {
	scores := make(map[Label]float64, len(out.Labels))
	top := Result{Intent: LabelGeneralQuery, Confidence: 0.5}
	for i, label := range out.Labels {
		if i >= len(out.Scores) || !valid(label) {
			continue
		}
		scores[label] = out.Scores[i]
	}
	if len(scores) == 0 {
		return Fallback()
	}
	first := true
	for label, score := range scores {
		if first || score > top.Confidence {
			top.Intent = label
			top.Confidence = score
			first = false
		}
	}
	top.Scores = scores
	return top
}
