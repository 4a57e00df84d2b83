// Package memory implementa todos los puertos de persistencia y los TxRunner
// sobre estructuras en memoria. Sirve para tests aislados y desarrollo sin
// PostgreSQL: una transacción toma el mutex del store y, ante error, restaura
// el snapshot previo, con la misma atomicidad observable que la BD real.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tu-usuario/pos-ledger/internal/application/cash"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)
var _ cash.TxRunner = (*Store)(nil)

type balanceKey struct {
	ProductID  string
	LocationID string
}

// Store estado compartido. Los accesores (Balances, StockMovements, ...)
// devuelven adaptadores que cumplen los puertos de repositorio; fuera de una
// transacción cada llamada toma el mutex, dentro de Run/RunCash ya lo tiene.
type Store struct {
	mu sync.Mutex

	products      map[string]entity.Product
	locations     map[string]entity.Location
	balances      map[balanceKey]entity.ProductBalance
	movements     []entity.StockMovement
	movementIndex map[string]int
	reservations  map[string]entity.Reservation
	sessions      map[string]entity.CashSession
	cashMovements []entity.CashMovement
	counts        []entity.CashCount

	// MovementCreateHook permite inyectar un fallo al persistir un movimiento
	// de stock (ej. simular un crash entre las dos patas de un traslado).
	MovementCreateHook func(*entity.StockMovement) error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]entity.Product),
		locations:     make(map[string]entity.Location),
		balances:      make(map[balanceKey]entity.ProductBalance),
		movementIndex: make(map[string]int),
		reservations:  make(map[string]entity.Reservation),
		sessions:      make(map[string]entity.CashSession),
	}
}

// snapshot copia superficial de todas las colecciones; las entidades se
// guardan por valor, así que basta con copiar mapas y slices.
type snapshot struct {
	products      map[string]entity.Product
	locations     map[string]entity.Location
	balances      map[balanceKey]entity.ProductBalance
	movements     []entity.StockMovement
	movementIndex map[string]int
	reservations  map[string]entity.Reservation
	sessions      map[string]entity.CashSession
	cashMovements []entity.CashMovement
	counts        []entity.CashCount
}

func (s *Store) snapshotLocked() snapshot {
	return snapshot{
		products:      copyMap(s.products),
		locations:     copyMap(s.locations),
		balances:      copyMap(s.balances),
		movements:     append([]entity.StockMovement(nil), s.movements...),
		movementIndex: copyMap(s.movementIndex),
		reservations:  copyMap(s.reservations),
		sessions:      copyMap(s.sessions),
		cashMovements: append([]entity.CashMovement(nil), s.cashMovements...),
		counts:        append([]entity.CashCount(nil), s.counts...),
	}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.products = snap.products
	s.locations = snap.locations
	s.balances = snap.balances
	s.movements = snap.movements
	s.movementIndex = snap.movementIndex
	s.reservations = snap.reservations
	s.sessions = snap.sessions
	s.cashMovements = snap.cashMovements
	s.counts = snap.counts
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Run ejecuta fn bajo el mutex del store; si fn falla, restaura el snapshot.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.BalanceRepository,
	reservationRepo repository.ReservationRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	err := fn(
		&stockMovementRepo{s: s},
		&balanceRepo{s: s},
		&reservationRepo{s: s},
		&productRepo{s: s},
	)
	if err != nil {
		s.restoreLocked(snap)
	}
	return err
}

// RunCash homólogo de Run para los repos de caja.
func (s *Store) RunCash(_ context.Context, fn func(
	sessionRepo repository.CashSessionRepository,
	movementRepo repository.CashMovementRepository,
	countRepo repository.CashCountRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	err := fn(
		&cashSessionRepo{s: s},
		&cashMovementRepo{s: s},
		&cashCountRepo{s: s},
	)
	if err != nil {
		s.restoreLocked(snap)
	}
	return err
}

// Accesores pool-facing: toman el mutex en cada llamada.

func (s *Store) Balances() repository.BalanceRepository {
	return &balanceRepo{s: s, lock: true}
}

func (s *Store) StockMovements() repository.StockMovementRepository {
	return &stockMovementRepo{s: s, lock: true}
}

func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepo{s: s, lock: true}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{s: s, lock: true}
}

func (s *Store) Locations() repository.LocationRepository {
	return &locationRepo{s: s, lock: true}
}

func (s *Store) Sessions() repository.CashSessionRepository {
	return &cashSessionRepo{s: s, lock: true}
}

func (s *Store) CashMovements() repository.CashMovementRepository {
	return &cashMovementRepo{s: s, lock: true}
}

func (s *Store) Counts() repository.CashCountRepository {
	return &cashCountRepo{s: s, lock: true}
}

// SetBalance fija un saldo directamente, saltándose el ledger. Solo para
// tests que necesitan simular una tabla de saldos corrupta.
func (s *Store) SetBalance(b entity.ProductBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{b.ProductID, b.LocationID}] = b
}

func (s *Store) acquire(lock bool) func() {
	if !lock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// sortMovementsDesc ordena por fecha descendente preservando el orden de
// inserción entre timestamps iguales.
func sortMovementsDesc(list []*entity.StockMovement) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
