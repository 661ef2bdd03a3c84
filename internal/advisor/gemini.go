package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tally-dev/tally/internal/model"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrNoAPIKey is returned when no Gemini API key is available.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set")

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a Gemini model which candidates are important.
type GeminiClassifier struct {
	client *genai.Client
	model  generator
}

// NewGeminiClassifier connects to the Gemini API. Call Close when done.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.SetTemperature(0)
	return &GeminiClassifier{client: client, model: m}, nil
}

// Close releases the underlying client.
func (g *GeminiClassifier) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// ImportantNames implements Classifier.
func (g *GeminiClassifier) ImportantNames(ctx context.Context, candidates []model.RecurringCandidate) ([]string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(Prompt(candidates)))
	if err != nil {
		return nil, fmt.Errorf("generating content with Gemini: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini model")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}
	return ParseNames(text.String()), nil
}
