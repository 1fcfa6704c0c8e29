package entity

import "time"

// Product representa un producto del bar (insumo o elaborado).
// El stock vive en Stock (un registro por producto); aquí solo identidad,
// códigos y metadatos de producción.
type Product struct {
	ID           string
	Name         string
	Description  string
	Code         string // código interno (opcional, único entre activos)
	Barcode      string // código de barras (opcional)
	Unit         string // unidad de venta por defecto: Un, Kg, Gr, Lt, Ml, Cc
	IsElaborated bool   // true si se produce a partir de una receta
	BaseRecipeID string // receta base cuando IsElaborated
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
