package entities

import (
	"sort"
)

const (
	CustomCategory = "custom"
	customIcon     = "Star"
	customColor    = "cyan"
)

// CatalogCategory groups templates under one heading
type CatalogCategory struct {
	Icon  string         `json:"icon"`
	Color string         `json:"color"`
	Items []CardTemplate `json:"items"`
}

// Catalog is the browseable set of card templates keyed by category name
type Catalog struct {
	categories map[string]CatalogCategory
}

// NewCatalog creates a catalog from fetched categories. Invalid items are dropped.
func NewCatalog(categories map[string]CatalogCategory) *Catalog {
	c := &Catalog{categories: make(map[string]CatalogCategory, len(categories))}
	for name, cat := range categories {
		items := make([]CardTemplate, 0, len(cat.Items))
		for _, item := range cat.Items {
			if item.Validate() == nil {
				items = append(items, item)
			}
		}
		cat.Items = items
		c.categories[name] = cat
	}
	return c
}

// EmptyCatalog returns a catalog with no categories
func EmptyCatalog() *Catalog {
	return &Catalog{categories: make(map[string]CatalogCategory)}
}

// Categories returns a copy of the categories
func (c *Catalog) Categories() map[string]CatalogCategory {
	out := make(map[string]CatalogCategory, len(c.categories))
	for name, cat := range c.categories {
		items := make([]CardTemplate, len(cat.Items))
		copy(items, cat.Items)
		cat.Items = items
		out[name] = cat
	}
	return out
}

// CategoryNames returns the category names in sorted order
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the total number of templates
func (c *Catalog) Size() int {
	n := 0
	for _, cat := range c.categories {
		n += len(cat.Items)
	}
	return n
}

// AddCustom validates and appends a user-defined template under the custom category
func (c *Catalog) AddCustom(template CardTemplate) error {
	if err := template.Validate(); err != nil {
		return err
	}
	cat, ok := c.categories[CustomCategory]
	if !ok {
		cat = CatalogCategory{Icon: customIcon, Color: customColor}
	}
	cat.Items = append(cat.Items, template)
	c.categories[CustomCategory] = cat
	return nil
}

// Merge returns a new catalog holding other's categories with this catalog's custom items appended
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := EmptyCatalog()
	if other != nil {
		for name, cat := range other.Categories() {
			merged.categories[name] = cat
		}
	}
	custom, ok := c.categories[CustomCategory]
	if !ok || len(custom.Items) == 0 {
		return merged
	}
	cat, ok := merged.categories[CustomCategory]
	if !ok {
		cat = CatalogCategory{Icon: customIcon, Color: customColor}
	}
	cat.Items = append(cat.Items, custom.Items...)
	merged.categories[CustomCategory] = cat
	return merged
}
