package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
)

// CategoryStore loads the category catalog. The built-in catalog is used
// when no categories file exists.
type CategoryStore struct {
	CategoriesFile string
}

type categoriesFile struct {
	Categories []models.Category `yaml:"categories"`
}

// NewCategoryStore creates a category store backed by the given YAML file.
func NewCategoryStore(categoriesFile string) *CategoryStore {
	if categoriesFile == "" {
		categoriesFile = "categories.yaml"
	}
	return &CategoryStore{CategoriesFile: categoriesFile}
}

// LoadCategories returns the catalog from disk, or the built-in default
// catalog when the file is absent or empty.
func (s *CategoryStore) LoadCategories() ([]models.Category, error) {
	filePath, err := findConfigFile(s.CategoriesFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Categories file not found, using built-in catalog",
				logging.Field{Key: "file", Value: s.CategoriesFile})
			return models.DefaultCategories, nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}
	if len(parsed.Categories) == 0 {
		return models.DefaultCategories, nil
	}

	log.Debug("Loaded categories",
		logging.Field{Key: "count", Value: len(parsed.Categories)},
		logging.Field{Key: "file", Value: filePath})
	return parsed.Categories, nil
}
