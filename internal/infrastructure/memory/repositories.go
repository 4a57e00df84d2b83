package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// balanceRepo saldos por producto+ubicación. Igual que la BD, devuelve un
// saldo en cero cuando el par todavía no existe.
type balanceRepo struct {
	s    *Store
	lock bool
}

func (r *balanceRepo) Get(productID, locationID string) (*entity.ProductBalance, error) {
	defer r.s.acquire(r.lock)()
	b, ok := r.s.balances[balanceKey{productID, locationID}]
	if !ok {
		return &entity.ProductBalance{
			ProductID:  productID,
			LocationID: locationID,
			OnHand:     decimal.Zero,
			Reserved:   decimal.Zero,
		}, nil
	}
	out := b
	return &out, nil
}

func (r *balanceRepo) GetForUpdate(productID, locationID string) (*entity.ProductBalance, error) {
	return r.Get(productID, locationID)
}

func (r *balanceRepo) Upsert(balance *entity.ProductBalance) error {
	defer r.s.acquire(r.lock)()
	b := *balance
	b.UpdatedAt = time.Now()
	r.s.balances[balanceKey{b.ProductID, b.LocationID}] = b
	return nil
}

func (r *balanceRepo) ListByLocation(locationID string) ([]*entity.ProductBalance, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.ProductBalance
	for k, b := range r.s.balances {
		if k.LocationID != locationID {
			continue
		}
		cp := b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// stockMovementRepo ledger de inventario en memoria.
type stockMovementRepo struct {
	s    *Store
	lock bool
}

func (r *stockMovementRepo) Create(movement *entity.StockMovement) error {
	defer r.s.acquire(r.lock)()
	if _, exists := r.s.movementIndex[movement.ID]; exists {
		return domain.ErrDuplicate
	}
	if r.s.MovementCreateHook != nil {
		if err := r.s.MovementCreateHook(movement); err != nil {
			return err
		}
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	r.s.movements = append(r.s.movements, *movement)
	r.s.movementIndex[movement.ID] = len(r.s.movements) - 1
	return nil
}

func (r *stockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	defer r.s.acquire(r.lock)()
	idx, ok := r.s.movementIndex[id]
	if !ok {
		return nil, nil
	}
	m := r.s.movements[idx]
	return &m, nil
}

func (r *stockMovementRepo) List(filter repository.StockMovementFilter) ([]*entity.StockMovement, error) {
	defer r.s.acquire(r.lock)()
	var matched []*entity.StockMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.LocationID != "" && m.LocationID != filter.LocationID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.Reason != "" && m.Reason != filter.Reason {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		cp := m
		matched = append(matched, &cp)
	}
	sortMovementsDesc(matched)
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func (r *stockMovementRepo) SumDeltas(productID, locationID string) (decimal.Decimal, error) {
	defer r.s.acquire(r.lock)()
	sum := decimal.Zero
	for i := range r.s.movements {
		m := &r.s.movements[i]
		if m.ProductID == productID && m.LocationID == locationID {
			sum = sum.Add(m.QuantityDelta)
		}
	}
	return sum, nil
}

// reservationRepo reservas en memoria.
type reservationRepo struct {
	s    *Store
	lock bool
}

func (r *reservationRepo) Create(reservation *entity.Reservation) error {
	defer r.s.acquire(r.lock)()
	if _, exists := r.s.reservations[reservation.ID]; exists {
		return domain.ErrDuplicate
	}
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r *reservationRepo) GetByID(id string) (*entity.Reservation, error) {
	defer r.s.acquire(r.lock)()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *reservationRepo) GetForUpdate(id string) (*entity.Reservation, error) {
	return r.GetByID(id)
}

func (r *reservationRepo) UpdateStatus(id, status string, at time.Time) error {
	defer r.s.acquire(r.lock)()
	res, ok := r.s.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = at
	r.s.reservations[id] = res
	return nil
}

func (r *reservationRepo) ListActive(productID, locationID string) ([]*entity.Reservation, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.Status != entity.ReservationActive {
			continue
		}
		if productID != "" && res.ProductID != productID {
			continue
		}
		if locationID != "" && res.LocationID != locationID {
			continue
		}
		cp := res
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// productRepo catálogo en memoria.
type productRepo struct {
	s    *Store
	lock bool
}

func (r *productRepo) Create(product *entity.Product) error {
	defer r.s.acquire(r.lock)()
	if _, exists := r.s.products[product.ID]; exists {
		return domain.ErrDuplicate
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.acquire(r.lock)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(sku string) (*entity.Product, error) {
	defer r.s.acquire(r.lock)()
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) UpdateCost(id string, cost decimal.Decimal) error {
	defer r.s.acquire(r.lock)()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return nil
}

func (r *productRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.Product
	for _, p := range r.s.products {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

// locationRepo ubicaciones en memoria.
type locationRepo struct {
	s    *Store
	lock bool
}

func (r *locationRepo) Create(location *entity.Location) error {
	defer r.s.acquire(r.lock)()
	if _, exists := r.s.locations[location.ID]; exists {
		return domain.ErrDuplicate
	}
	if location.CreatedAt.IsZero() {
		location.CreatedAt = time.Now()
	}
	r.s.locations[location.ID] = *location
	return nil
}

func (r *locationRepo) GetByID(id string) (*entity.Location, error) {
	defer r.s.acquire(r.lock)()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *locationRepo) List() ([]*entity.Location, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.Location
	for _, l := range r.s.locations {
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// cashSessionRepo sesiones de caja en memoria. Create replica el índice único
// parcial de la BD: una sola sesión OPEN por caja.
type cashSessionRepo struct {
	s    *Store
	lock bool
}

func (r *cashSessionRepo) Create(session *entity.CashSession) error {
	defer r.s.acquire(r.lock)()
	for _, existing := range r.s.sessions {
		if existing.RegisterID == session.RegisterID && existing.Status == entity.SessionOpen {
			return domain.ErrSessionAlreadyOpen
		}
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *cashSessionRepo) GetByID(id string) (*entity.CashSession, error) {
	defer r.s.acquire(r.lock)()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r *cashSessionRepo) GetForUpdate(id string) (*entity.CashSession, error) {
	return r.GetByID(id)
}

func (r *cashSessionRepo) GetOpenByRegister(registerID string) (*entity.CashSession, error) {
	defer r.s.acquire(r.lock)()
	for _, sess := range r.s.sessions {
		if sess.RegisterID == registerID && sess.Status == entity.SessionOpen {
			cp := sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *cashSessionRepo) Close(session *entity.CashSession) error {
	defer r.s.acquire(r.lock)()
	stored, ok := r.s.sessions[session.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != entity.SessionOpen {
		return domain.ErrSessionClosed
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *cashSessionRepo) ListByRegister(registerID string, limit, offset int) ([]*entity.CashSession, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.CashSession
	for _, sess := range r.s.sessions {
		if sess.RegisterID != registerID {
			continue
		}
		cp := sess
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return paginate(out, limit, offset), nil
}

// cashMovementRepo ledger de caja en memoria.
type cashMovementRepo struct {
	s    *Store
	lock bool
}

func (r *cashMovementRepo) Create(movement *entity.CashMovement) error {
	defer r.s.acquire(r.lock)()
	for i := range r.s.cashMovements {
		if r.s.cashMovements[i].ID == movement.ID {
			return domain.ErrDuplicate
		}
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	r.s.cashMovements = append(r.s.cashMovements, *movement)
	return nil
}

func (r *cashMovementRepo) ListBySession(sessionID string) ([]*entity.CashMovement, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.CashMovement
	for i := range r.s.cashMovements {
		if r.s.cashMovements[i].SessionID != sessionID {
			continue
		}
		cp := r.s.cashMovements[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *cashMovementRepo) SumBySession(sessionID string) (decimal.Decimal, error) {
	defer r.s.acquire(r.lock)()
	sum := decimal.Zero
	for i := range r.s.cashMovements {
		if r.s.cashMovements[i].SessionID == sessionID {
			sum = sum.Add(r.s.cashMovements[i].Amount)
		}
	}
	return sum, nil
}

func (r *cashMovementRepo) TotalsByType(sessionID string) (map[string]decimal.Decimal, error) {
	defer r.s.acquire(r.lock)()
	totals := make(map[string]decimal.Decimal)
	for i := range r.s.cashMovements {
		m := &r.s.cashMovements[i]
		if m.SessionID != sessionID {
			continue
		}
		totals[m.Type] = totals[m.Type].Add(m.Amount)
	}
	return totals, nil
}

// cashCountRepo arqueos en memoria.
type cashCountRepo struct {
	s    *Store
	lock bool
}

func (r *cashCountRepo) Create(count *entity.CashCount) error {
	defer r.s.acquire(r.lock)()
	cp := *count
	cp.Details = append([]entity.CashCountDetail(nil), count.Details...)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.counts = append(r.s.counts, cp)
	return nil
}

func (r *cashCountRepo) ListBySession(sessionID string) ([]*entity.CashCount, error) {
	defer r.s.acquire(r.lock)()
	var out []*entity.CashCount
	for i := range r.s.counts {
		if r.s.counts[i].SessionID != sessionID {
			continue
		}
		cp := r.s.counts[i]
		cp.Details = append([]entity.CashCountDetail(nil), cp.Details...)
		out = append(out, &cp)
	}
	return out, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
