package domain

// Product is a catalogue item, optionally owned by a designer
type Product struct {
	Base
	Name       string  `json:"name"`
	DesignerID *string `json:"designerId,omitempty"`
}

func (p *Product) EntityType() EntityType { return EntityProduct }

func (p *Product) Label() string { return p.Name }

func (p *Product) Snapshot() Snapshot {
	return Snapshot{
		"name":       p.Name,
		"designerId": formatString(p.DesignerID),
	}
}

type CreateProduct struct {
	Name       string  `json:"name"`
	DesignerID *string `json:"designerId"`
}

func (c CreateProduct) Validate() error {
	if blank(c.Name) {
		return NewValidationError("product name is required")
	}
	return nil
}

func (c CreateProduct) Build() *Product {
	return &Product{Name: c.Name, DesignerID: c.DesignerID}
}

type ProductPatch struct {
	Name       Optional[string]  `json:"name"`
	DesignerID Optional[*string] `json:"designerId"`
}

func (p ProductPatch) Validate() error {
	if p.Name.Set && blank(p.Name.Value) {
		return NewValidationError("product name cannot be cleared")
	}
	return nil
}

func (p ProductPatch) Apply(product *Product) {
	p.Name.ApplyTo(&product.Name)
	p.DesignerID.ApplyTo(&product.DesignerID)
}
