package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Cost es el costo promedio ponderado, actualizado en cada entrada.
// AllowNegativeStock permite que el saldo en mano quede negativo (ej. venta
// antes de registrar la compra); por defecto está deshabilitado.
type Product struct {
	ID                 string
	SKU                string
	Name               string
	Cost               decimal.Decimal
	AllowNegativeStock bool
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
