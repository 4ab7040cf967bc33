package models

// Category is static reference data describing a spending category.
type Category struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	NameEn          string   `yaml:"name_en" json:"name_en"`
	Color           string   `yaml:"color" json:"color"`
	DefaultNeedType NeedType `yaml:"default_need_type" json:"default_need_type"`
}

// CategoryOther is the terminal fallback category for transactions no rule
// or model could classify.
const CategoryOther = "other"

// DefaultCategories is the built-in category catalog. A YAML catalog file,
// when present, replaces it (see store.CategoryStore).
var DefaultCategories = []Category{
	{ID: "food-home", Name: "Еда дома", NameEn: "Groceries", Color: "#4CAF50", DefaultNeedType: NeedTypeNeed},
	{ID: "food-out", Name: "Еда вне дома", NameEn: "Eating Out", Color: "#FF9800", DefaultNeedType: NeedTypeWant},
	{ID: "delivery", Name: "Доставка", NameEn: "Delivery", Color: "#E91E63", DefaultNeedType: NeedTypeWant},
	{ID: "coffee", Name: "Кофе/перекусы", NameEn: "Coffee/Snacks", Color: "#795548", DefaultNeedType: NeedTypeWant},
	{ID: "transport", Name: "Транспорт", NameEn: "Transport", Color: "#2196F3", DefaultNeedType: NeedTypeMixed},
	{ID: "shopping", Name: "Покупки", NameEn: "Shopping", Color: "#9C27B0", DefaultNeedType: NeedTypeWant},
	{ID: "subscriptions", Name: "Подписки/сервисы", NameEn: "Subscriptions", Color: "#00BCD4", DefaultNeedType: NeedTypeMixed},
	{ID: "health", Name: "Здоровье", NameEn: "Health", Color: "#F44336", DefaultNeedType: NeedTypeNeed},
	{ID: CategoryOther, Name: "Прочее", NameEn: "Other", Color: "#607D8B", DefaultNeedType: NeedTypeUnknown},
}

// CategoryByID looks a category up in the given catalog.
func CategoryByID(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
