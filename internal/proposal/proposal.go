// Package proposal fills the outreach template used for proposal drafts.
package proposal

import "strings"

const (
	DefaultPortfolioName = "a similar project"
	DefaultTimeframe     = "3-5 days"

	PricingNote = "I can quote fixed-price once scope (pages/sections + integrations) is clear."
)

// Questions are asked at the end of every draft, in this order.
var Questions = []string{
	"How many pages/sections do you need?",
	"Do you have a Figma/design + content ready?",
	"Any API/backend integration needed, or UI-only?",
}

type projectType struct {
	phrase string
	any    []string
}

// first match wins
var projectTypes = []projectType{
	{phrase: "a responsive landing page", any: []string{"landing", "marketing", "homepage"}},
	{phrase: "a dashboard UI", any: []string{"dashboard", "admin", "panel"}},
	{phrase: "frontend fixes and improvements", any: []string{"bug", "fix", "issue"}},
	{phrase: "Figma-to-React implementation", any: []string{"figma", "design"}},
	{phrase: "frontend + API integration", any: []string{"api", "integration"}},
}

const defaultProjectType = "a clean frontend UI"

type Input struct {
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
	PortfolioName  string `json:"portfolioName,omitempty"`
	PortfolioURL   string `json:"portfolioUrl,omitempty"`
	Timeframe      string `json:"timeframe,omitempty"`
}

type Draft struct {
	DraftText   string `json:"draftText"`
	Questions   string `json:"questions"`
	PricingNote string `json:"pricingNote"`
}

// Generate builds the draft for in. Empty optional fields take their defaults.
func Generate(in Input) Draft {
	name := in.PortfolioName
	if name == "" {
		name = DefaultPortfolioName
	}
	timeframe := in.Timeframe
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	kind := ProjectType(in.JobTitle + "\n" + in.JobDescription)

	portfolioLine := "Relevant work: " + name
	if in.PortfolioURL != "" {
		portfolioLine += " — " + in.PortfolioURL
	}

	lines := []string{
		"Hi! I can build " + kind + " for you and deliver a pixel-perfect, responsive result (mobile + desktop).",
		"Stack: React / Next.js, Tailwind CSS, TypeScript (clean components + reusable UI).",
		portfolioLine,
		"",
		"Plan:",
		"1) Confirm scope + review design/assets (Figma if available)",
		"2) Build UI components + responsive layout",
		"3) QA + polish (spacing, accessibility basics, performance)",
		"",
		"Timeline: " + timeframe + " (depending on scope).",
		"",
		"A few quick questions:",
	}
	for _, q := range Questions {
		lines = append(lines, "• "+q)
	}

	return Draft{
		DraftText:   strings.Join(lines, "\n"),
		Questions:   strings.Join(Questions, "\n"),
		PricingNote: PricingNote,
	}
}

// ProjectType classifies text into one of the fixed project phrases.
func ProjectType(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, pt := range projectTypes {
		for _, needle := range pt.any {
			if strings.Contains(t, needle) {
				return pt.phrase
			}
		}
	}
	return defaultProjectType
}
