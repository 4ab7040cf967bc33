// Package aiclassify is the pluggable external classifier: it suggests a
// category and need type for transactions the rule engine left in the
// fallback category. Suggestions are advisory. They are recorded with the
// model provenance and never override a manual assignment.
package aiclassify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Suggestion is one advisory classification result.
type Suggestion struct {
	CategoryID    string          `json:"categoryId"`
	NeedType      models.NeedType `json:"needType"`
	Confidence    float64         `json:"confidence"`
	SuggestedRule *models.Rule    `json:"suggestedRule,omitempty"`
}

// Classifier produces suggestions for a batch of transactions. The result
// slice is index-aligned with the input; a zero Suggestion means the
// classifier had nothing to offer for that transaction.
type Classifier interface {
	Suggest(ctx context.Context, transactions []models.Transaction) ([]Suggestion, error)
}

// GeminiClassifier calls the Gemini API, one transaction per request.
type GeminiClassifier struct {
	APIKey     string
	ModelName  string
	Categories []models.Category

	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClassifier creates a classifier using the given model and
// category catalog. The client is initialized lazily on first use.
func NewGeminiClassifier(apiKey, modelName string, categories []models.Category) *GeminiClassifier {
	return &GeminiClassifier{APIKey: apiKey, ModelName: modelName, Categories: categories}
}

func (c *GeminiClassifier) ensureClient(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(c.ModelName)
	return nil
}

// Close releases the underlying API client.
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Suggest asks the model for a category per transaction. Per-transaction
// API failures yield an empty suggestion for that slot rather than failing
// the whole batch.
func (c *GeminiClassifier) Suggest(ctx context.Context, transactions []models.Transaction) ([]Suggestion, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, len(transactions))
	for i, tx := range transactions {
		suggestion, err := c.suggestOne(ctx, tx)
		if err != nil {
			log.WithError(err).Warn("Classifier request failed",
				logging.Field{Key: "merchant", Value: tx.MerchantNorm})
			continue
		}
		suggestions[i] = suggestion
	}
	return suggestions, nil
}

func (c *GeminiClassifier) suggestOne(ctx context.Context, tx models.Transaction) (Suggestion, error) {
	ids := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		ids = append(ids, category.ID)
	}

	prompt := fmt.Sprintf(`Categorize the following financial transaction:
Merchant: %s
Description: %s
Amount: %s
Date: %s

Assign exactly one category id from this list:
%s

Respond in this format:
Category: [category id]
NeedType: [need, want or mixed]
Confidence: [0.0 to 1.0]`,
		tx.MerchantNorm,
		tx.DescriptionRaw,
		tx.Amount.String(),
		tx.Date.Format("2006-01-02"),
		strings.Join(ids, ", "))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Suggestion{}, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Suggestion{}, fmt.Errorf("no response from Gemini API")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	suggestion := parseResponse(text)
	if _, ok := models.CategoryByID(c.Categories, suggestion.CategoryID); !ok {
		return Suggestion{}, fmt.Errorf("model suggested unknown category %q", suggestion.CategoryID)
	}
	return suggestion, nil
}

func parseResponse(text string) Suggestion {
	var suggestion Suggestion
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "category":
			suggestion.CategoryID = strings.ToLower(value)
		case "needtype":
			switch models.NeedType(strings.ToLower(value)) {
			case models.NeedTypeNeed, models.NeedTypeWant, models.NeedTypeMixed:
				suggestion.NeedType = models.NeedType(strings.ToLower(value))
			default:
				suggestion.NeedType = models.NeedTypeUnknown
			}
		case "confidence":
			if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 && parsed <= 1 {
				suggestion.Confidence = parsed
			}
		}
	}
	return suggestion
}

// MockClassifier returns canned suggestions for tests.
type MockClassifier struct {
	Suggestions map[string]Suggestion // keyed by MerchantNorm
	Err         error
}

// Suggest returns the canned suggestion per transaction.
func (m *MockClassifier) Suggest(ctx context.Context, transactions []models.Transaction) ([]Suggestion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	suggestions := make([]Suggestion, len(transactions))
	for i, tx := range transactions {
		suggestions[i] = m.Suggestions[tx.MerchantNorm]
	}
	return suggestions, nil
}

// ApplySuggestions records confident suggestions on the batch with model
// provenance. Manual assignments are never touched, and suggestions below
// the confidence threshold are ignored. Returns the number applied.
func ApplySuggestions(ctx context.Context, classifier Classifier, batch []models.Transaction, confidenceThreshold float64, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	suggestions, err := classifier.Suggest(ctx, batch)
	if err != nil {
		return 0, err
	}
	if len(suggestions) != len(batch) {
		return 0, fmt.Errorf("classifier returned %d suggestions for %d transactions", len(suggestions), len(batch))
	}

	applied := 0
	for i := range batch {
		suggestion := suggestions[i]
		if suggestion.CategoryID == "" || suggestion.Confidence < confidenceThreshold {
			continue
		}
		if batch[i].HasManualCategory() {
			continue
		}
		batch[i].CategoryID = suggestion.CategoryID
		batch[i].NeedType = suggestion.NeedType
		batch[i].CategorySource = models.SourceModel
		batch[i].CategoryConfidence = suggestion.Confidence
		applied++
	}
	return applied, nil
}
