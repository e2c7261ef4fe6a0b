package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dmelnic/storylens/pkg/models"
)

// Format names accepted by the CLI and the HTTP API.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const topTraitCount = 5

// JSON renders the canonical machine-readable report. Field order follows
// the struct definitions and slices are already sorted by the pipeline,
// so identical analyses produce identical bytes.
func JSON(analysis *models.Analysis) ([]byte, error) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders a human-readable report.
func Markdown(analysis *models.Analysis) (string, error) {
	var b strings.Builder
	if err := markdownTmpl.Execute(&b, newView(analysis)); err != nil {
		return "", fmt.Errorf("failed to render markdown report: %w", err)
	}
	return b.String(), nil
}

// HTML renders a styled standalone HTML report.
func HTML(analysis *models.Analysis) (string, error) {
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, newView(analysis)); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return b.String(), nil
}

// FailureNote renders the per-document note a batch report records for a
// document that could not be analyzed.
func FailureNote(filename string, err error) string {
	return fmt.Sprintf("## %s\n\nAnalysis failed: %s\n", filename, err)
}

type categoryTraits struct {
	Category string
	Traits   string
}

type characterSection struct {
	Name       string
	Mentions   int
	Badges     []string
	Categories []categoryTraits
	Frequent   []models.TraitRecord
}

type view struct {
	Analysis  *models.Analysis
	Processed string
	Sections  []characterSection
}

func newView(analysis *models.Analysis) view {
	byCharacter := make(map[string][]models.TraitRecord)
	for _, tr := range analysis.Traits {
		byCharacter[tr.Character] = append(byCharacter[tr.Character], tr)
	}

	sections := make([]characterSection, 0, len(analysis.Characters))
	for _, c := range analysis.Characters {
		traits := byCharacter[c.Name]
		section := characterSection{Name: c.Name, Mentions: c.MentionCount}

		byCategory := make(map[string][]string)
		for _, tr := range traits {
			byCategory[tr.Category] = append(byCategory[tr.Category], tr.Trait)
			section.Badges = append(section.Badges, tr.Trait)
		}
		sort.Strings(section.Badges)

		categories := make([]string, 0, len(byCategory))
		for cat := range byCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		for _, cat := range categories {
			words := byCategory[cat]
			sort.Strings(words)
			section.Categories = append(section.Categories, categoryTraits{
				Category: titleCase(cat),
				Traits:   strings.Join(words, ", "),
			})
		}

		frequent := append([]models.TraitRecord(nil), traits...)
		sort.Slice(frequent, func(i, j int) bool {
			if frequent[i].Count != frequent[j].Count {
				return frequent[i].Count > frequent[j].Count
			}
			return frequent[i].Trait < frequent[j].Trait
		})
		if len(frequent) > topTraitCount {
			frequent = frequent[:topTraitCount]
		}
		section.Frequent = frequent

		sections = append(sections, section)
	}

	return view{
		Analysis:  analysis,
		Processed: analysis.ProcessedAt.Format("2006-01-02 15:04:05"),
		Sections:  sections,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
