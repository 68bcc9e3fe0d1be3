// internal/llm/parse.go
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parsed is a model reply split into the lists the analyses table stores and
// everything else.
type Parsed struct {
	Results         map[string]interface{}
	Insights        []string
	Recommendations []string
	Structured      bool
}

var (
	insightKeys        = []string{"insights", "key_insights", "key_features", "key_advantages"}
	recommendationKeys = []string{"recommendations", "strategic_recommendations", "areas_for_improvement"}
)

// ParseSummary accepts a JSON object, optionally inside a code fence. Anything else is
// kept verbatim under results["summary"].
func ParseSummary(text string) Parsed {
	raw := strings.TrimSpace(text)
	body := stripFence(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(body), &obj); err != nil || obj == nil {
		if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
			if json.Unmarshal([]byte(body[start:end+1]), &obj) != nil {
				obj = nil
			}
		}
	}
	if obj == nil {
		return Parsed{
			Results:         map[string]interface{}{"summary": raw},
			Insights:        []string{},
			Recommendations: []string{},
		}
	}

	p := Parsed{
		Results:         map[string]interface{}{},
		Insights:        takeList(obj, insightKeys),
		Recommendations: takeList(obj, recommendationKeys),
		Structured:      true,
	}
	for k, v := range obj {
		p.Results[k] = v
	}
	return p
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// takeList reads the first present key as a list of strings and removes it from obj.
func takeList(obj map[string]interface{}, keys []string) []string {
	out := []string{}
	for _, key := range keys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		delete(obj, key)
		switch items := v.(type) {
		case []interface{}:
			for _, item := range items {
				if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
					out = append(out, s)
				}
			}
		case string:
			if s := strings.TrimSpace(items); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return out
}
