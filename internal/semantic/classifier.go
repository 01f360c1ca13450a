package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

// DefaultModelName is the default Gemini model used for column classification.
const DefaultModelName = "gemini-2.0-flash-exp"

// GeminiClassifier maps statement columns to fields by showing the model each
// column's name and sample values. It expects the model to return a STRICT
// JSON object of column indices.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

var _ statement.Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier creates a classifier backed by the Gemini API.
// Credentials are read from the environment by the genai client.
func NewGeminiClassifier(ctx context.Context, model string, log zerolog.Logger) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClassifier: create genai client: %w", err)
	}

	if model == "" {
		model = DefaultModelName
	}

	return &GeminiClassifier{client: client, model: model, log: log}, nil
}

// Classify sends the column profiles to the model and decodes the returned
// index mapping. Indices the model gets wrong (non-integer or out of range)
// are dropped rather than failing the call; transport and decode failures are
// returned so the caller can fall back to heuristic scoring.
func (c *GeminiClassifier) Classify(ctx context.Context, profiles []statement.ColumnProfile) (statement.FieldMapping, error) {
	if len(profiles) == 0 {
		return statement.FieldMapping{}, nil
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildColumnsPrompt(profiles)}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return statement.FieldMapping{}, fmt.Errorf("GeminiClassifier.Classify: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return statement.FieldMapping{}, fmt.Errorf("GeminiClassifier.Classify: empty response from model")
	}

	mapping, err := c.decodeMapping(rawText, len(profiles))
	if err != nil {
		return statement.FieldMapping{}, err
	}

	c.log.Debug().
		Interface("identifier", mapping.Identifier).
		Interface("date", mapping.Date).
		Interface("amount", mapping.Amount).
		Msg("model mapped statement columns")

	return mapping, nil
}

// decodeMapping parses the model's JSON response into a field mapping,
// validating each index against the number of columns.
func (c *GeminiClassifier) decodeMapping(rawText string, columns int) (statement.FieldMapping, error) {
	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return statement.FieldMapping{}, fmt.Errorf("decodeMapping: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return statement.FieldMapping{
		Identifier: c.indexField(parsed, "check_number", columns),
		Date:       c.indexField(parsed, "date", columns),
		Amount:     c.indexField(parsed, "amount", columns),
	}, nil
}

// indexField reads a column index from the decoded response. Missing keys,
// nulls, non-integer values, and out-of-range indices all map to nil.
func (c *GeminiClassifier) indexField(m map[string]interface{}, key string, columns int) *int {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}

	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		c.log.Warn().Str("field", key).Interface("value", v).Msg("model returned a non-integer column index")
		return nil
	}

	idx := int(f)
	if idx < 0 || idx >= columns {
		c.log.Warn().Str("field", key).Int("index", idx).Msg("model returned an out-of-range column index")
		return nil
	}

	return &idx
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// try to keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
