// Package comparison classifies free-text comparison values into check marks,
// crosses or literal text, and assembles the comparison table.
package comparison

import (
	"strings"

	"github.com/SirClappington/euclones/internal/models"
)

// Kind is the display class of a comparison value.
type Kind int

const (
	Literal Kind = iota
	Affirmative
	Negative
)

func (k Kind) String() string {
	switch k {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "literal"
	}
}

// Value is a classified comparison cell. Text is the original input and is only
// displayed for Literal values.
type Value struct {
	Kind Kind
	Text string
}

func (v Value) IsAffirmative() bool { return v.Kind == Affirmative }
func (v Value) IsNegative() bool    { return v.Kind == Negative }

var affirmative = map[string]struct{}{
	"yes": {}, "true": {}, "✓": {}, "y": {}, "available": {}, "included": {},
}

var negative = map[string]struct{}{
	"no": {}, "false": {}, "✗": {}, "x": {}, "n": {}, "unavailable": {}, "not included": {},
}

// Classify matches the lower-cased value against the fixed affirmative and
// negative sets. Values are not trimmed, so " yes" is Literal.
func Classify(value string) Value {
	normalized := strings.ToLower(value)
	if _, ok := affirmative[normalized]; ok {
		return Value{Kind: Affirmative, Text: value}
	}
	if _, ok := negative[normalized]; ok {
		return Value{Kind: Negative, Text: value}
	}
	return Value{Kind: Literal, Text: value}
}

// Row is one rendered line of the table.
type Row struct {
	Key   string
	Label string
	Left  Value
	Right Value
}

// Default headings used when the item does not override them.
const (
	DefaultTitle          = "FEATURE COMPARISON"
	DefaultSubtitle       = "Everything You Need—"
	DefaultTagline        = "Just Without the Brand Price Tag"
	DefaultCompetitorName = "US Alternative"
)

// Table is the view model for the comparison section.
type Table struct {
	Title          string
	Subtitle       string
	Tagline        string
	ToolName       string
	CompetitorName string
	Rows           []Row
}

// BuildTable classifies every row of item. It returns nil when the item has no
// comparison rows, which suppresses the section.
func BuildTable(item *models.CatalogItem) *Table {
	if item == nil || len(item.ComparisonPoints) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(item.ComparisonPoints))
	for _, point := range item.ComparisonPoints {
		rows = append(rows, Row{
			Key:   point.Key,
			Label: point.FeatureName,
			Left:  Classify(point.EUToolValue),
			Right: Classify(point.USToolValue),
		})
	}

	return &Table{
		Title:          orDefault(item.ComparisonTitle, DefaultTitle),
		Subtitle:       orDefault(item.ComparisonSubtitle, DefaultSubtitle),
		Tagline:        orDefault(item.ComparisonTagline, DefaultTagline),
		ToolName:       item.Name,
		CompetitorName: orDefault(item.UsAlternativeName, DefaultCompetitorName),
		Rows:           rows,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
