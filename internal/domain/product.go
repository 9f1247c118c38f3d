package domain

// Unit is the measure a product is priced and stocked in
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "gram"
	UnitLiter Unit = "liter"
	UnitPiece Unit = "piece"
)

// Valid reports whether u is one of the supported units
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGram, UnitLiter, UnitPiece:
		return true
	}
	return false
}

// String representation (for logging)
func (u Unit) String() string {
	return string(u)
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"` // price per unit
	Unit     Unit    `json:"unit"`
	Category string  `json:"category"`
	Stock    float64 `json:"stock"` // available quantity, never below 0
}

// ProductInput carries the fields of a new product; the id is assigned by the catalog
type ProductInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     Unit    `json:"unit"`
	Category string  `json:"category"`
	Stock    float64 `json:"stock"`
}

// ProductPatch is a partial update, nil fields are left untouched
type ProductPatch struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Unit     *Unit    `json:"unit,omitempty"`
	Category *string  `json:"category,omitempty"`
	Stock    *float64 `json:"stock,omitempty"`
}

// Apply merges the patch into p
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Unit != nil {
		p.Unit = *pp.Unit
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
}

// SeedProducts is the catalog used when nothing has been persisted yet
func SeedProducts() []Product {
	return []Product{
		{ID: "1", Name: "Rice", Price: 60, Unit: UnitKg, Category: "Grains", Stock: 100},
		{ID: "2", Name: "Sugar", Price: 45, Unit: UnitKg, Category: "Grocery", Stock: 50},
		{ID: "3", Name: "Toor Dal", Price: 120, Unit: UnitKg, Category: "Pulses", Stock: 30},
		{ID: "4", Name: "Cooking Oil", Price: 180, Unit: UnitLiter, Category: "Oil & Ghee", Stock: 40},
		{ID: "5", Name: "Turmeric Powder", Price: 200, Unit: UnitKg, Category: "Spices", Stock: 15},
		{ID: "6", Name: "Wheat Flour", Price: 35, Unit: UnitKg, Category: "Grains", Stock: 60},
	}
}
