package entity

import "time"

// Location representa una ubicación física de inventario (bodega, sala de venta, trastienda).
// Solo las ubicaciones activas admiten movimientos.
type Location struct {
	ID        string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
