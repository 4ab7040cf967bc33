package models

import "time"

// MatchType selects how a rule pattern is applied to a merchant name.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
)

// Rule is a user-authored categorization pattern. Rules are the persisted
// source of truth for category assignment; transactions cache the result.
// Higher priority wins; ties break on ID so re-runs are deterministic.
type Rule struct {
	ID         string    `yaml:"id" json:"id"`
	Priority   int       `yaml:"priority" json:"priority"`
	MatchType  MatchType `yaml:"match_type" json:"match_type"`
	Pattern    string    `yaml:"pattern" json:"pattern"`
	CategoryID string    `yaml:"category_id" json:"category_id"`
	NeedType   NeedType  `yaml:"need_type,omitempty" json:"need_type,omitempty"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at" json:"updated_at"`
}
