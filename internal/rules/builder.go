package rules

import (
	"time"

	"github.com/google/uuid"

	"vkazakov/fintrack/internal/models"
)

// FromTransaction converts a manual categorization into a persisted rule:
// a contains-match on the transaction's normalized merchant name, assigned
// the next priority above every existing rule so it wins immediately.
func FromTransaction(tx *models.Transaction, categoryID string, needType models.NeedType, existing []models.Rule) models.Rule {
	maxPriority := 0
	for _, rule := range existing {
		if rule.Priority > maxPriority {
			maxPriority = rule.Priority
		}
	}

	now := time.Now()
	return models.Rule{
		ID:         uuid.NewString(),
		Priority:   maxPriority + 1,
		MatchType:  models.MatchContains,
		Pattern:    tx.MerchantNorm,
		CategoryID: categoryID,
		NeedType:   needType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
