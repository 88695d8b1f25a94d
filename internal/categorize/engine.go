package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bankbooks/internal/database"
	"bankbooks/internal/models"
)

// Caller errors. Validation failures are rejected before any store access;
// ErrCategoryNotFound distinguishes a bad category reference from "nothing
// matched", which is a successful zero-count result.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNoPatterns       = errors.New("no patterns given")
	ErrNoTransactionIDs = errors.New("no transaction ids given")
)

const (
	// sampleSize caps the matched descriptions reported per group.
	sampleSize = 10
	// candidateThreshold is the minimum transaction count for a description
	// to surface as a new-pattern candidate.
	candidateThreshold = 10
)

// Engine applies pattern groups to the uncategorized transaction set.
type Engine struct {
	db     *database.DB
	groups []Group
}

// NewEngine creates an Engine. A nil groups slice selects the built-in table.
func NewEngine(db *database.DB, groups []Group) *Engine {
	if groups == nil {
		groups = DefaultGroups()
	}
	return &Engine{db: db, groups: groups}
}

// GroupSuggestion is the analysis result for one pattern group.
type GroupSuggestion struct {
	Label            string                   `json:"label"`
	Patterns         []string                 `json:"patterns"`
	LinkedCategoryID *int64                   `json:"linked_category_id,omitempty"`
	TotalCount       int                      `json:"total_count"`
	TotalAmount      decimal.Decimal          `json:"total_amount"`
	Sample           []models.DescriptionStat `json:"sample"`
}

// SuggestReport is the full auto-categorization analysis.
type SuggestReport struct {
	Groups              []GroupSuggestion        `json:"per_group"`
	UnmatchedCandidates []models.DescriptionStat `json:"unmatched_candidates"`
	TotalUncategorized  int                      `json:"total_uncategorized"`
	TotalCategorized    int                      `json:"total_categorized"`
}

// Suggest analyzes the uncategorized transactions against every pattern
// group. Per group it reports the matching transaction count, the summed
// amount (per-description average times count) and a capped sample of
// matched descriptions, plus a proposed existing category when one's name
// contains a group keyword. Descriptions with at least candidateThreshold
// transactions that landed in no group's sample come back as candidates for
// new patterns.
func (e *Engine) Suggest(ctx context.Context) (*SuggestReport, error) {
	stats, err := e.db.UncategorizedStats()
	if err != nil {
		return nil, fmt.Errorf("load uncategorized stats: %w", err)
	}
	categories, err := e.db.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	report := &SuggestReport{}
	sampled := make(map[string]bool)

	for _, group := range e.groups {
		matcher := NewMatcher(group.Patterns)
		suggestion := GroupSuggestion{
			Label:            group.Label,
			Patterns:         matcher.Patterns(),
			TotalAmount:      decimal.Zero,
			LinkedCategoryID: linkCategory(group, categories),
		}

		for _, stat := range stats {
			if !matcher.Matches(stat.Name) {
				continue
			}
			suggestion.TotalCount += stat.Count
			suggestion.TotalAmount = suggestion.TotalAmount.Add(
				stat.AvgAmount.Mul(decimal.NewFromInt(int64(stat.Count))))
			if len(suggestion.Sample) < sampleSize {
				suggestion.Sample = append(suggestion.Sample, stat)
				sampled[stat.Name] = true
			}
		}

		if suggestion.TotalCount > 0 {
			report.Groups = append(report.Groups, suggestion)
		}
	}

	for _, stat := range stats {
		if stat.Count >= candidateThreshold && !sampled[stat.Name] {
			report.UnmatchedCandidates = append(report.UnmatchedCandidates, stat)
		}
	}

	report.TotalUncategorized, report.TotalCategorized, err = e.db.CategorizationCounts()
	if err != nil {
		return nil, fmt.Errorf("load categorization counts: %w", err)
	}
	return report, nil
}

// linkCategory returns the id of the first category whose name contains one
// of the group's keywords, or nil.
func linkCategory(group Group, categories []models.Category) *int64 {
	for _, cat := range categories {
		name := strings.ToLower(cat.Name)
		for _, keyword := range group.CategoryKeywords {
			if keyword != "" && strings.Contains(name, strings.ToLower(keyword)) {
				id := cat.ID
				return &id
			}
		}
	}
	return nil
}

// ApplyPatterns assigns categoryID to every uncategorized transaction whose
// description matches one of the patterns. Already-categorized transactions
// are never touched. Returns the number updated; zero matches is a valid
// outcome, not an error.
func (e *Engine) ApplyPatterns(ctx context.Context, categoryID int64, patterns []string) (int, error) {
	matcher := NewMatcher(patterns)
	if len(matcher.Patterns()) == 0 {
		return 0, ErrNoPatterns
	}
	if err := e.checkCategory(categoryID); err != nil {
		return 0, err
	}

	uncategorized, err := e.db.ListUncategorized()
	if err != nil {
		return 0, fmt.Errorf("load uncategorized: %w", err)
	}

	var ids []int64
	for _, txn := range uncategorized {
		if matcher.Matches(txn.Name) {
			ids = append(ids, txn.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	updated, err := e.db.AssignCategory(categoryID, ids)
	if err != nil {
		return 0, fmt.Errorf("assign category: %w", err)
	}
	return updated, nil
}

// ApplyIDs assigns categoryID to exactly the given transactions, intersected
// with those still uncategorized.
func (e *Engine) ApplyIDs(ctx context.Context, categoryID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, ErrNoTransactionIDs
	}
	if err := e.checkCategory(categoryID); err != nil {
		return 0, err
	}

	updated, err := e.db.AssignCategory(categoryID, ids)
	if err != nil {
		return 0, fmt.Errorf("assign category: %w", err)
	}
	return updated, nil
}

func (e *Engine) checkCategory(categoryID int64) error {
	if categoryID == 0 {
		return ErrCategoryNotFound
	}
	if _, err := e.db.GetCategory(categoryID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("category %d: %w", categoryID, ErrCategoryNotFound)
		}
		return err
	}
	return nil
}
