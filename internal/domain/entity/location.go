package entity

import "time"

// Tipos de ubicación.
const (
	LocationKindStore   = "STORE"   // tienda
	LocationKindCentral = "CENTRAL" // bodega central / cocina
)

// Location representa una tienda o bodega central que lleva saldos propios.
type Location struct {
	ID        string
	Kind      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
