// Package ledgertest provee un almacén en memoria que implementa los puertos
// de repositorio y el TxRunner para los tests de los casos de uso, sin
// PostgreSQL. Reproduce las dos propiedades que el motor exige de la
// infraestructura real: serialización por ítem con timeout (lock de la
// cabecera del libro) y descarte de las inserciones si el callback falla.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Store almacén en memoria compartido por los repositorios fake.
type Store struct {
	mu           sync.RWMutex
	items        map[string]*entity.Item
	txns         map[string]*entity.StockTransaction
	txnOrder     []string
	reservations map[string]*entity.Reservation
	resOrder     []string

	lockMu sync.Mutex
	locks  map[string]chan struct{}

	// LockTimeout acota la espera por el lock de un ítem; vencido el plazo la
	// operación falla con ErrLockTimeout (reintentable por el caller).
	LockTimeout time.Duration
}

var _ appledger.TxRunner = (*Store)(nil)

// NewStore crea un almacén vacío con timeout de lock de 2s.
func NewStore() *Store {
	return &Store{
		items:        make(map[string]*entity.Item),
		txns:         make(map[string]*entity.StockTransaction),
		reservations: make(map[string]*entity.Reservation),
		locks:        make(map[string]chan struct{}),
		LockTimeout:  2 * time.Second,
	}
}

// ItemRepo, TxnRepo y ResRepo devuelven repositorios directos (fuera de tx)
// para inyectar en los casos de uso.
func (s *Store) ItemRepo() repository.ItemRepository             { return &ItemRepo{store: s} }
func (s *Store) TxnRepo() repository.StockTransactionRepository  { return &TxnRepo{store: s} }
func (s *Store) ResRepo() repository.ReservationRepository       { return &ResRepo{store: s} }

// LockItem adquiere el lock del ítem desde fuera de un Run (para provocar
// contención en los tests de timeout). Devuelve la función que lo libera.
func (s *Store) LockItem(itemID string) func() {
	ch := s.lockChan(itemID)
	ch <- struct{}{}
	return func() { <-ch }
}

func (s *Store) lockChan(itemID string) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	ch, ok := s.locks[itemID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[itemID] = ch
	}
	return ch
}

// ─── TxRunner ─────────────────────────────────────────────────────────────────

type memTx struct {
	store       *Store
	held        map[string]bool
	stagedTxns  []*entity.StockTransaction
	stagedReses []*entity.Reservation
}

// Run ejecuta fn con repositorios atados a una "transacción": las inserciones
// se aplican solo si fn retorna nil; los locks de ítem se liberan al final,
// después del commit, igual que la fila bloqueada en PostgreSQL.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	txRepo repository.StockTransactionRepository,
	resRepo repository.ReservationRepository,
) error) error {
	tx := &memTx{store: s, held: make(map[string]bool)}
	defer tx.releaseLocks()

	err := fn(&ItemRepo{store: s, tx: tx}, &TxnRepo{store: s, tx: tx}, &ResRepo{store: s, tx: tx})
	if err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (tx *memTx) lockItem(itemID string) error {
	if tx.held[itemID] {
		return nil
	}
	ch := tx.store.lockChan(itemID)
	select {
	case ch <- struct{}{}:
		tx.held[itemID] = true
		return nil
	case <-time.After(tx.store.LockTimeout):
		return domain.ErrLockTimeout
	}
}

func (tx *memTx) releaseLocks() {
	for itemID := range tx.held {
		<-tx.store.lockChan(itemID)
	}
	tx.held = map[string]bool{}
}

func (tx *memTx) commit() {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, txn := range tx.stagedTxns {
		cp := *txn
		tx.store.txns[txn.ID] = &cp
		tx.store.txnOrder = append(tx.store.txnOrder, txn.ID)
	}
	for _, res := range tx.stagedReses {
		cp := *res
		tx.store.reservations[res.ID] = &cp
		tx.store.resOrder = append(tx.store.resOrder, res.ID)
	}
	tx.stagedTxns = nil
	tx.stagedReses = nil
}

// ─── ItemRepository ──────────────────────────────────────────────────────────

// ItemRepo fake de ItemRepository. Con tx, GetForUpdate adquiere el lock del
// ítem; sin tx se comporta como el repositorio sobre el pool.
type ItemRepo struct {
	store *Store
	tx    *memTx
}

func (r *ItemRepo) Create(item *entity.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	if r.tx == nil {
		return nil, domain.ErrConflict // GetForUpdate solo tiene sentido dentro de una tx
	}
	if err := r.tx.lockItem(id); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *ItemRepo) Update(item *entity.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) Retire(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	item.RetiredAt = &now
	item.UpdatedAt = now
	return nil
}

func (r *ItemRepo) List(limit, offset int, includeRetired bool) ([]*entity.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.Item
	for _, item := range r.store.items {
		if !includeRetired && item.IsRetired() {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (r *ItemRepo) ListAllTrackable() ([]*entity.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.Item
	for _, item := range r.store.items {
		if item.IsTrackableStock && !item.IsRetired() {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ─── StockTransactionRepository ──────────────────────────────────────────────

// TxnRepo fake del libro de transacciones. Las inserciones dentro de una tx
// quedan en staging hasta el commit; las transiciones de estado validan el
// estado vigente igual que el UPDATE condicional de PostgreSQL.
type TxnRepo struct {
	store *Store
	tx    *memTx
}

func (r *TxnRepo) Create(txn *entity.StockTransaction) error {
	if r.tx != nil {
		cp := *txn
		r.tx.stagedTxns = append(r.tx.stagedTxns, &cp)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *txn
	r.store.txns[txn.ID] = &cp
	r.store.txnOrder = append(r.store.txnOrder, txn.ID)
	return nil
}

func (r *TxnRepo) GetByID(id string) (*entity.StockTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *txn
	return &cp, nil
}

func (r *TxnRepo) MarkApproved(id string, runningBalance decimal.Decimal, approvedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[id]
	if !ok {
		return domain.ErrNotFound
	}
	if txn.Status != entity.TxStatusPending {
		return domain.ErrConflict
	}
	txn.Status = entity.TxStatusApproved
	txn.RunningBalance = runningBalance
	at := approvedAt
	txn.ApprovedAt = &at
	return nil
}

func (r *TxnRepo) MarkRejected(id string, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[id]
	if !ok {
		return domain.ErrNotFound
	}
	if txn.Status != entity.TxStatusPending {
		return domain.ErrConflict
	}
	txn.Status = entity.TxStatusRejected
	txn.RejectedReason = reason
	return nil
}

func (r *TxnRepo) OnHand(itemID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sum := decimal.Zero
	for _, txn := range r.store.txns {
		if txn.ItemID == itemID && txn.CountsTowardStock() {
			sum = sum.Add(txn.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *TxnRepo) OnHandAll() ([]repository.ItemOnHand, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	byItem := make(map[string]decimal.Decimal)
	for _, txn := range r.store.txns {
		if txn.CountsTowardStock() {
			byItem[txn.ItemID] = byItem[txn.ItemID].Add(txn.SignedQuantity())
		}
	}
	out := make([]repository.ItemOnHand, 0, len(byItem))
	for itemID, onHand := range byItem {
		out = append(out, repository.ItemOnHand{ItemID: itemID, OnHand: onHand})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r *TxnRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.StockTransaction
	for _, id := range r.store.txnOrder {
		txn := r.store.txns[id]
		if txn.ItemID != itemID {
			continue
		}
		if from != nil && txn.TransactionDate.Before(*from) {
			continue
		}
		if to != nil && txn.TransactionDate.After(*to) {
			continue
		}
		cp := *txn
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *TxnRepo) ListEffective(itemID string) ([]*entity.StockTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.StockTransaction
	for _, id := range r.store.txnOrder {
		txn := r.store.txns[id]
		if txn.ItemID == itemID && txn.CountsTowardStock() {
			cp := *txn
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveAt(out[i]).Before(effectiveAt(out[j]))
	})
	return out, nil
}

func effectiveAt(txn *entity.StockTransaction) time.Time {
	if txn.ApprovedAt != nil {
		return *txn.ApprovedAt
	}
	return txn.CreatedAt
}

// ─── ReservationRepository ───────────────────────────────────────────────────

// ResRepo fake de ReservationRepository.
type ResRepo struct {
	store *Store
	tx    *memTx
}

func (r *ResRepo) Create(res *entity.Reservation) error {
	if r.tx != nil {
		cp := *res
		r.tx.stagedReses = append(r.tx.stagedReses, &cp)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *res
	r.store.reservations[res.ID] = &cp
	r.store.resOrder = append(r.store.resOrder, res.ID)
	return nil
}

func (r *ResRepo) GetByID(id string) (*entity.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *ResRepo) Close(id string, status string, closedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if res.Status != entity.ReservationActive {
		return domain.ErrConflict
	}
	res.Status = status
	at := closedAt
	res.ClosedAt = &at
	return nil
}

func (r *ResRepo) ActiveQuantity(itemID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sum := decimal.Zero
	for _, res := range r.store.reservations {
		if res.ItemID == itemID && res.IsActive() {
			sum = sum.Add(res.Quantity)
		}
	}
	return sum, nil
}

func (r *ResRepo) ActiveQuantityAll() ([]repository.ItemReserved, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	byItem := make(map[string]decimal.Decimal)
	for _, res := range r.store.reservations {
		if res.IsActive() {
			byItem[res.ItemID] = byItem[res.ItemID].Add(res.Quantity)
		}
	}
	out := make([]repository.ItemReserved, 0, len(byItem))
	for itemID, reserved := range byItem {
		out = append(out, repository.ItemReserved{ItemID: itemID, Reserved: reserved})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r *ResRepo) ListByItem(itemID string, limit, offset int) ([]*entity.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.Reservation
	for _, id := range r.store.resOrder {
		res := r.store.reservations[id]
		if res.ItemID == itemID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *ResRepo) ListByContext(contextID string) ([]*entity.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.Reservation
	for _, id := range r.store.resOrder {
		res := r.store.reservations[id]
		if res.RequestingContextID == contextID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
