package entity

import "time"

// Supplier representa un proveedor del bar.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	Notes     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
