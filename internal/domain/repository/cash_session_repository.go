package repository

import "github.com/tu-usuario/pos-ledger/internal/domain/entity"

// CashSessionRepository define el puerto de persistencia de sesiones de caja.
type CashSessionRepository interface {
	Create(session *entity.CashSession) error
	GetByID(id string) (*entity.CashSession, error)
	// GetForUpdate bloquea la sesión; los movimientos de caja serializan sobre
	// ella. Sesiones de cajas distintas nunca compiten.
	GetForUpdate(id string) (*entity.CashSession, error)
	// GetOpenByRegister devuelve la sesión OPEN de una caja, o nil si no hay.
	GetOpenByRegister(registerID string) (*entity.CashSession, error)
	// Close persiste los campos de cierre y el estado CLOSED. Única mutación
	// permitida sobre una sesión, y solo una vez.
	Close(session *entity.CashSession) error
	ListByRegister(registerID string, limit, offset int) ([]*entity.CashSession, error)
}
