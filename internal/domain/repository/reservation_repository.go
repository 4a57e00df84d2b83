package repository

import (
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(reservation *entity.Reservation) error
	GetByID(id string) (*entity.Reservation, error)
	// GetForUpdate bloquea la reserva para transición de estado.
	GetForUpdate(id string) (*entity.Reservation, error)
	UpdateStatus(id, status string, at time.Time) error
	ListActive(productID, locationID string) ([]*entity.Reservation, error)
}
