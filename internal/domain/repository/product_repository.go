package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// UpdateCost actualiza el costo promedio ponderado tras una entrada.
	UpdateCost(id string, cost decimal.Decimal) error
	List(limit, offset int) ([]*entity.Product, error)
}
