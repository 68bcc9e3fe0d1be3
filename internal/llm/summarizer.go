// internal/llm/summarizer.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
)

const brandSystemPrompt = "You are a brand analyst. Analyze brand data and provide structured insights in JSON format."

const brandInstructions = `Analyze the following brand information and return a JSON object with these keys:
"brand_summary" (string), "target_audience" (string), "brand_positioning" (string),
"business_model" (string), "unique_selling_points" (list of strings),
"insights" (list of strings), "recommendations" (list of strings).
Only return valid JSON.

Brand Data:
`

const compareSystemPrompt = "You are a competitive analyst. Analyze brand positioning versus competitors."

const compareInstructions = `Compare this brand with its competitors and return a JSON object with these keys:
"competitive_position" ("Strong", "Moderate" or "Weak"), "insights" (list of strings),
"recommendations" (list of strings), "market_opportunities" (list of strings),
"competitive_threats" (list of strings), and "competitors": a list of objects with
"domain", "market_position" and "estimated_revenue" (a range such as "$1M-$5M").
Only return valid JSON.

`

// Summary is one model analysis ready to be stored.
type Summary struct {
	Results         map[string]interface{}
	Insights        []string
	Recommendations []string
	Model           string
	Duration        time.Duration
}

// StoreStats is the short form of a store used in comparisons.
type StoreStats struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain"`
	Products     int      `json:"products"`
	Social       int      `json:"social_presence"`
	FAQs         int      `json:"faqs"`
	Policies     int      `json:"policies"`
	ProductTypes []string `json:"product_types,omitempty"`
}

type CompetitorAssessment struct {
	MarketPosition   string
	EstimatedRevenue string
}

// Comparison adds per-competitor assessments, keyed by domain, to a Summary.
type Comparison struct {
	Summary
	Competitors map[string]CompetitorAssessment
}

type Summarizer struct {
	client Completer
	cfg    config.LLMConfig
	logger *logrus.Entry
}

func NewSummarizer(client Completer, cfg config.LLMConfig, logger *logrus.Logger) *Summarizer {
	return &Summarizer{
		client: client,
		cfg:    cfg,
		logger: logger.WithField("component", "summarizer"),
	}
}

// Summarize asks the model for a brand summary. Errors are *SummarizerError.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (*Summary, error) {
	prompt := brandInstructions + BuildPrompt(in, s.cfg.PromptBudget)
	return s.run(ctx, brandSystemPrompt, prompt, in.Name)
}

// Compare asks the model to position a brand against its competitors.
func (s *Summarizer) Compare(ctx context.Context, brand StoreStats, competitors []StoreStats) (*Comparison, error) {
	body, kept, err := comparisonBody(brand, competitors, s.cfg.PromptBudget)
	if err != nil {
		return nil, err
	}
	if kept < len(competitors) {
		s.logger.WithFields(logrus.Fields{
			"subject":     brand.Domain,
			"competitors": len(competitors),
			"kept":        kept,
		}).Warn("competitor list trimmed to fit the prompt budget")
	}

	summary, err := s.run(ctx, compareSystemPrompt, compareInstructions+body, brand.Name)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Summary: *summary, Competitors: map[string]CompetitorAssessment{}}
	if list, ok := summary.Results["competitors"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			domain := strings.ToLower(stringField(entry, "domain"))
			if domain == "" {
				continue
			}
			cmp.Competitors[domain] = CompetitorAssessment{
				MarketPosition:   stringField(entry, "market_position"),
				EstimatedRevenue: stringField(entry, "estimated_revenue"),
			}
		}
	}
	return cmp, nil
}

func (s *Summarizer) run(ctx context.Context, system, prompt, subject string) (*Summary, error) {
	start := time.Now()
	log := s.logger.WithFields(logrus.Fields{"subject": subject, "model": s.cfg.Model})

	text, err := s.client.Complete(ctx, system, prompt)
	if err != nil {
		log.WithError(err).Warn("summarizer call failed")
		return nil, err
	}

	parsed := ParseSummary(text)
	if !parsed.Structured {
		log.Warn("model returned free text; stored as summary")
	}

	return &Summary{
		Results:         parsed.Results,
		Insights:        parsed.Insights,
		Recommendations: parsed.Recommendations,
		Model:           s.cfg.Model,
		Duration:        time.Since(start),
	}, nil
}

// comparisonBody encodes the brand and as many leading competitors as fit in budget.
// The brand alone is always sent, even when it is larger than budget.
func comparisonBody(brand StoreStats, competitors []StoreStats, budget int) (string, int, error) {
	for n := len(competitors); n >= 0; n-- {
		data, err := json.MarshalIndent(map[string]interface{}{
			"brand":       brand,
			"competitors": competitors[:n],
		}, "", "  ")
		if err != nil {
			return "", 0, fmt.Errorf("encode comparison input: %w", err)
		}
		if budget <= 0 || len(data) <= budget || n == 0 {
			return string(data), n, nil
		}
	}
	return "", 0, nil
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
