package domain

import "strings"

// StatusCategory is the coarse workflow bucket derived from a raw status
// string.
type StatusCategory string

const (
	CategoryNew        StatusCategory = "NEW"
	CategoryInProgress StatusCategory = "IN_PROGRESS"
	CategoryClosed     StatusCategory = "CLOSED"
	CategoryOther      StatusCategory = "OTHER"
	CategoryUnknown    StatusCategory = "UNKNOWN"
)

// IsOpen reports whether the category counts as open work.
func (c StatusCategory) IsOpen() bool {
	return c == CategoryNew || c == CategoryInProgress
}

// StatusTaxonomy maps raw tracker statuses to workflow categories. A
// taxonomy is a plain value so each deployment can supply its own tables
// without touching engine code; every component categorizes through one
// taxonomy instance so the tables cannot drift apart.
type StatusTaxonomy struct {
	New        []string
	InProgress []string
	Closed     []string

	NewKeywords        []string
	InProgressKeywords []string
	ClosedKeywords     []string
}

// DefaultTaxonomy returns the stock category tables for a common bug
// workflow.
func DefaultTaxonomy() *StatusTaxonomy {
	return &StatusTaxonomy{
		New: []string{"New", "To Do"},
		InProgress: []string{
			"Analysis", "Blocked", "Development", "In Development",
			"In Progress", "Review", "Development Done", "To Test", "In Test",
		},
		Closed: []string{"Rejected", "Closed", "Resolved", "Ready for UAT"},

		InProgressKeywords: []string{"progress", "review", "test", "qa"},
		ClosedKeywords:     []string{"done", "closed", "resolved", "cancel", "reject"},
		NewKeywords:        []string{"new", "to do", "backlog", "open"},
	}
}

// hintCategories maps platform-native category labels (e.g. Jira's
// statusCategory names) to workflow categories. Hints are defined by the
// platform, not the deployment, so they live outside the taxonomy tables.
var hintCategories = map[string]StatusCategory{
	"to do":         CategoryNew,
	"new":           CategoryNew,
	"in progress":   CategoryInProgress,
	"indeterminate": CategoryInProgress,
	"done":          CategoryClosed,
	"complete":      CategoryClosed,
}

// Categorize maps a raw status string to a workflow category.
//
// Resolution order: platform hint, exact table match (case-sensitive then
// case-insensitive), keyword fallback, OTHER. An empty status with no hint
// is UNKNOWN. The function is pure; identical inputs always yield the same
// category.
func (tax *StatusTaxonomy) Categorize(status, hint string) StatusCategory {
	if hint != "" {
		if cat, ok := hintCategories[strings.ToLower(strings.TrimSpace(hint))]; ok {
			return cat
		}
	}
	if status == "" {
		return CategoryUnknown
	}
	if cat, ok := tax.exactMatch(status); ok {
		return cat
	}
	if cat, ok := tax.keywordMatch(status); ok {
		return cat
	}
	return CategoryOther
}

func (tax *StatusTaxonomy) tables() []struct {
	statuses []string
	category StatusCategory
} {
	return []struct {
		statuses []string
		category StatusCategory
	}{
		{tax.New, CategoryNew},
		{tax.InProgress, CategoryInProgress},
		{tax.Closed, CategoryClosed},
	}
}

func (tax *StatusTaxonomy) exactMatch(status string) (StatusCategory, bool) {
	for _, table := range tax.tables() {
		for _, s := range table.statuses {
			if s == status {
				return table.category, true
			}
		}
	}
	lower := strings.ToLower(status)
	for _, table := range tax.tables() {
		for _, s := range table.statuses {
			if strings.ToLower(s) == lower {
				return table.category, true
			}
		}
	}
	return "", false
}

// keywordMatch is the fuzzy fallback for statuses missing from the tables.
// A status that only resolves here is a configuration gap worth adding to
// the taxonomy rather than relying on substring matching.
func (tax *StatusTaxonomy) keywordMatch(status string) (StatusCategory, bool) {
	lower := strings.ToLower(status)
	for _, kw := range tax.InProgressKeywords {
		if strings.Contains(lower, kw) {
			return CategoryInProgress, true
		}
	}
	for _, kw := range tax.ClosedKeywords {
		if strings.Contains(lower, kw) {
			return CategoryClosed, true
		}
	}
	for _, kw := range tax.NewKeywords {
		if strings.Contains(lower, kw) {
			return CategoryNew, true
		}
	}
	return "", false
}
