// internal/llm/prompt.go
package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// Input is the store data a prompt is built from.
type Input struct {
	Name         string
	WebsiteURL   string
	BrandContext string
	Policies     map[string]string
	FAQs         []models.FAQ
	Social       map[string]string
	HeroProducts []string
	ProductTypes []string
	Products     []ProductLine
}

type ProductLine struct {
	Title string
	Type  string
	Price string
}

// NewInput collects prompt input from a scraped profile and its catalog.
func NewInput(websiteURL string, profile models.StoreProfile, products []models.Product) Input {
	in := Input{
		Name:         profile.Name,
		WebsiteURL:   websiteURL,
		BrandContext: profile.BrandContext,
		Policies:     map[string]string{},
		FAQs:         profile.FAQs,
		Social:       profile.SocialHandles,
	}
	for name, text := range map[string]*string{
		"privacy": profile.PrivacyPolicyText,
		"return":  profile.ReturnPolicyText,
		"refund":  profile.RefundPolicyText,
	} {
		if text != nil && *text != "" {
			in.Policies[name] = *text
		}
	}
	for _, h := range profile.HeroProducts {
		in.HeroProducts = append(in.HeroProducts, h.Title)
	}

	types := map[string]bool{}
	for _, p := range products {
		line := ProductLine{Title: p.Title, Type: p.ProductType}
		if p.Price.Valid {
			line.Price = p.Price.Decimal.StringFixed(2)
		}
		in.Products = append(in.Products, line)
		if p.ProductType != "" && !types[p.ProductType] {
			types[p.ProductType] = true
			in.ProductTypes = append(in.ProductTypes, p.ProductType)
		}
	}
	return in
}

// section shares of the total budget, in priority order
var sectionShares = []struct {
	name  string
	share float64
}{
	{"name", 0.05},
	{"context", 0.25},
	{"policies", 0.25},
	{"faqs", 0.15},
	{"social", 0.05},
	{"heroes", 0.10},
	{"types", 0.05},
	{"products", 1},
}

const minSectionChars = 40

// BuildPrompt renders input into at most budget bytes. Sections are added in
// priority order, each cut to its share of the budget. The same input
// always yields the same prompt.
func BuildPrompt(in Input, budget int) string {
	var b strings.Builder
	remaining := budget

	for _, s := range sectionShares {
		if remaining < minSectionChars {
			break
		}
		// one byte is kept for the trailing newline
		limit := int(float64(budget) * s.share)
		if limit > remaining-1 {
			limit = remaining - 1
		}

		var text string
		if s.name == "products" {
			text = productSection(in.Products, limit)
		} else {
			text = renderSection(in, s.name)
			text = utils.TruncateBytes(text, limit)
		}
		if len(text) > remaining-1 {
			text = utils.TruncateBytes(text, remaining-1)
		}
		if text == "" {
			continue
		}
		text += "\n"
		b.WriteString(text)
		remaining -= len(text)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderSection(in Input, name string) string {
	switch name {
	case "name":
		if in.Name == "" {
			return ""
		}
		out := "Brand Name: " + in.Name
		if in.WebsiteURL != "" {
			out += " (" + in.WebsiteURL + ")"
		}
		return out
	case "context":
		if in.BrandContext == "" {
			return ""
		}
		return "Brand Description: " + in.BrandContext
	case "policies":
		var parts []string
		for _, key := range sortedKeys(in.Policies) {
			parts = append(parts, fmt.Sprintf("%s policy: %s", key, in.Policies[key]))
		}
		if len(parts) == 0 {
			return ""
		}
		return "Policies:\n" + strings.Join(parts, "\n")
	case "faqs":
		var parts []string
		for _, f := range in.FAQs {
			parts = append(parts, "Q: "+f.Question+" A: "+f.Answer)
		}
		if len(parts) == 0 {
			return ""
		}
		return "Common Questions:\n" + strings.Join(parts, "\n")
	case "social":
		var parts []string
		for _, key := range sortedKeys(in.Social) {
			parts = append(parts, key+": "+in.Social[key])
		}
		if len(parts) == 0 {
			return ""
		}
		return "Social Media: " + strings.Join(parts, ", ")
	case "heroes":
		if len(in.HeroProducts) == 0 {
			return ""
		}
		return "Featured Products: " + strings.Join(in.HeroProducts, ", ")
	case "types":
		if len(in.ProductTypes) == 0 {
			return ""
		}
		return "Product Types: " + strings.Join(in.ProductTypes, ", ")
	}
	return ""
}

// productSection adds whole lines only.
func productSection(products []ProductLine, limit int) string {
	if len(products) == 0 {
		return ""
	}
	header := fmt.Sprintf("Products (%d total):", len(products))
	if len(header) > limit {
		return ""
	}
	var b strings.Builder
	b.WriteString(header)
	for _, p := range products {
		line := "\n- " + p.Title
		if p.Type != "" {
			line += " [" + p.Type + "]"
		}
		if p.Price != "" {
			line += " $" + p.Price
		}
		if b.Len()+len(line) > limit {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
