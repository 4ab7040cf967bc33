// Package rules evaluates user-authored categorization patterns against
// normalized merchant names. First matching rule wins; matching is
// case-insensitive; an invalid regex pattern is a non-match, never an error
// that aborts the batch.
package rules

import (
	"regexp"
	"sort"
	"strings"

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

// Result is a categorization decision produced by the engine.
type Result struct {
	CategoryID string
	NeedType   models.NeedType
	RuleID     string
}

// Engine evaluates an ordered rule set. Rules are sorted once at
// construction: priority descending, ties broken by rule ID ascending so
// re-runs over the same rule set are deterministic.
type Engine struct {
	rules      []models.Rule
	categories []models.Category
	compiled   map[string]*regexp.Regexp
}

// NewEngine builds an engine over the given rules and category catalog.
// Regex patterns are compiled up front; patterns that fail to compile are
// kept but never match.
func NewEngine(ruleSet []models.Rule, categories []models.Category) *Engine {
	sorted := make([]models.Rule, len(ruleSet))
	copy(sorted, ruleSet)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	compiled := make(map[string]*regexp.Regexp)
	for _, rule := range sorted {
		if rule.MatchType != models.MatchRegex {
			continue
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			log.WithError(err).WithField("rule_id", rule.ID).Warn("Invalid rule regex, rule will never match")
			continue
		}
		compiled[rule.ID] = re
	}

	return &Engine{rules: sorted, categories: categories, compiled: compiled}
}

// Categorize returns the decision for a single transaction, or false when no
// rule matches. Transfers are never categorized.
func (e *Engine) Categorize(tx *models.Transaction) (Result, bool) {
	if tx.IsTransfer {
		return Result{}, false
	}

	merchantLower := strings.ToLower(tx.MerchantNorm)

	for _, rule := range e.rules {
		if !e.matches(rule, tx.MerchantNorm, merchantLower) {
			continue
		}
		return Result{
			CategoryID: rule.CategoryID,
			NeedType:   e.resolveNeedType(rule),
			RuleID:     rule.ID,
		}, true
	}

	return Result{}, false
}

func (e *Engine) matches(rule models.Rule, merchantNorm, merchantLower string) bool {
	patternLower := strings.ToLower(rule.Pattern)

	switch rule.MatchType {
	case models.MatchExact:
		return merchantLower == patternLower
	case models.MatchContains:
		return strings.Contains(merchantLower, patternLower)
	case models.MatchRegex:
		re, ok := e.compiled[rule.ID]
		if !ok {
			return false
		}
		return re.MatchString(merchantNorm)
	}
	return false
}

// resolveNeedType prefers the rule's own need type; otherwise the category's
// default applies.
func (e *Engine) resolveNeedType(rule models.Rule) models.NeedType {
	if rule.NeedType != "" {
		return rule.NeedType
	}
	if category, ok := models.CategoryByID(e.categories, rule.CategoryID); ok {
		return category.DefaultNeedType
	}
	return models.NeedTypeUnknown
}

// ApplyToBatch categorizes every transaction in place. Transactions with a
// manual category are never touched: manual assignment is sticky regardless
// of rule changes. Unmatched transactions are left uncategorized.
func (e *Engine) ApplyToBatch(batch []models.Transaction) int {
	categorized := 0
	for i := range batch {
		tx := &batch[i]
		if tx.HasManualCategory() {
			continue
		}
		result, ok := e.Categorize(tx)
		if !ok {
			continue
		}
		tx.CategoryID = result.CategoryID
		tx.NeedType = result.NeedType
		tx.CategorySource = models.SourceRule
		tx.CategoryConfidence = 1.0
		categorized++
	}
	return categorized
}
