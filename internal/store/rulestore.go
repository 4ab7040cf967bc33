package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
)

// RuleStore manages loading and saving of categorization rules in a YAML
// file. It is the persisted source of truth for category assignment.
type RuleStore struct {
	RulesFile string

	mu    sync.RWMutex
	rules []models.Rule
	dirty bool
}

type rulesFile struct {
	Rules []models.Rule `yaml:"rules"`
}

// NewRuleStore creates a rule store backed by the given YAML file.
func NewRuleStore(rulesFile string) *RuleStore {
	if rulesFile == "" {
		rulesFile = "rules.yaml"
	}
	return &RuleStore{RulesFile: rulesFile}
}

// Load reads the rule file. A missing file is not an error: the store
// starts empty.
func (s *RuleStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath, err := findConfigFile(s.RulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Rules file not found, starting with empty rule set",
				logging.Field{Key: "file", Value: s.RulesFile})
			s.rules = nil
			return nil
		}
		return fmt.Errorf("error resolving rules file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading rules file: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("error parsing rules file: %w", err)
	}

	s.rules = parsed.Rules
	s.dirty = false
	log.Debug("Loaded rules",
		logging.Field{Key: "count", Value: len(s.rules)},
		logging.Field{Key: "file", Value: filePath})
	return nil
}

// List returns a copy of all rules.
func (s *RuleStore) List() []models.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Upsert adds a rule or updates the rule with the same ID.
func (s *RuleStore) Upsert(rule models.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			s.dirty = true
			return
		}
	}
	s.rules = append(s.rules, rule)
	s.dirty = true
}

// Delete removes the rule with the given ID. Unknown IDs are a no-op.
func (s *RuleStore) Delete(ruleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == ruleID {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.dirty = true
			return
		}
	}
}

// ReplaceAll swaps the whole rule set.
func (s *RuleStore) ReplaceAll(rules []models.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make([]models.Rule, len(rules))
	copy(s.rules, rules)
	s.dirty = true
}

// Save writes the rules back to disk if they have been modified.
func (s *RuleStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	filePath, err := findConfigFile(s.RulesFile)
	if err != nil {
		filePath = s.RulesFile
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	data, err := yaml.Marshal(rulesFile{Rules: s.rules})
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing rules file: %w", err)
	}

	s.dirty = false
	log.Debug("Saved rules",
		logging.Field{Key: "count", Value: len(s.rules)},
		logging.Field{Key: "file", Value: filePath})
	return nil
}
