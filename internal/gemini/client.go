package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// LLM is the completion surface the service layer builds prompts against.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Client talks to the Gemini API. Text completions use the flash model,
// image analysis the pro model.
type Client struct {
	client     *genai.Client
	flashModel string
	proModel   string
}

// NewClient creates a Gemini client from an API key and model identifiers.
func NewClient(ctx context.Context, apiKey, flashModel, proModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(flashModel) == "" {
		flashModel = "gemini-2.5-flash"
	}
	if strings.TrimSpace(proModel) == "" {
		proModel = flashModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &Client{
		client:     client,
		flashModel: flashModel,
		proModel:   proModel,
	}, nil
}

// Generate sends a text-only completion request.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.flashModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: completion failed: %w", err)
	}
	return extractText(resp)
}

// GenerateWithImage sends a completion request with an inline image part.
func (c *Client) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("gemini: image data is required")
	}
	model := c.client.GenerativeModel(c.proModel)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData(imageFormat(mimeType), image),
	)
	if err != nil {
		return "", fmt.Errorf("gemini: image completion failed: %w", err)
	}
	return extractText(resp)
}

// Close releases resources held by the underlying client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates returned")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("gemini: empty content returned")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	result := strings.TrimSpace(out.String())
	if result == "" {
		return "", errors.New("gemini: candidate had no text parts")
	}
	return result, nil
}

// imageFormat converts a MIME type to the bare format genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	switch format {
	case "":
		return "png"
	case "jpg":
		return "jpeg"
	default:
		return format
	}
}
