package catalog

import "strings"

// UncategorizedLabel groups products without a category.
const UncategorizedLabel = "Uncategorized"

// Snapshot is an immutable, ordered view of the products returned by one
// load, indexed by id and SKU.
type Snapshot struct {
	products []Product
	byID     map[int64]int
	bySKU    map[string]int
}

func NewSnapshot(products []Product) Snapshot {
	s := Snapshot{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
		bySKU:    make(map[string]int, len(products)),
	}
	copy(s.products, products)
	for i, p := range s.products {
		s.byID[p.ID] = i
		s.bySKU[p.SKU] = i
	}
	return s
}

// Products returns a copy of the products in API order.
func (s Snapshot) Products() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s Snapshot) Len() int { return len(s.products) }

// Product looks a product up by id.
func (s Snapshot) Product(id int64) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// ExactSKU matches a SKU byte for byte. Scanned codes use this.
func (s Snapshot) ExactSKU(code string) (Product, bool) {
	i, ok := s.bySKU[code]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// FindSKU matches a typed SKU ignoring case and surrounding blanks.
func (s Snapshot) FindSKU(code string) (Product, bool) {
	code = strings.TrimSpace(code)
	if p, ok := s.ExactSKU(code); ok {
		return p, true
	}
	for _, p := range s.products {
		if strings.EqualFold(p.SKU, code) {
			return p, true
		}
	}
	return Product{}, false
}

// Search returns sale-screen suggestions: products whose name or SKU
// contains q, ignoring case. An empty query suggests nothing.
func (s Snapshot) Search(q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			out = append(out, p)
		}
	}
	return out
}

// Filter is the inventory screen filter: name, SKU or category contains q.
// An empty query returns everything.
func (s Snapshot) Filter(q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return s.Products()
	}
	var out []Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.CategoryName()), q) {
			out = append(out, p)
		}
	}
	return out
}

type CategoryGroup struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}

// GroupByCategory groups products in first-seen category order.
func GroupByCategory(products []Product) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, p := range products {
		cat := p.CategoryName()
		if cat == "" {
			cat = UncategorizedLabel
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}
