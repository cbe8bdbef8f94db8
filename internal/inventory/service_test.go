package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomstock/loomstock/internal/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	inventory map[int64]Inventory
	movements []StockMovement
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{inventory: make(map[int64]Inventory)}
}

func (r *memoryRepo) seed(productID, stock, threshold int64) {
	r.inventory[productID] = Inventory{ID: productID, ProductID: productID, StockQuantity: stock, LowStockThreshold: threshold}
}

// WithTx serialises callbacks the way the row lock does in Postgres.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) EnsureInventory(ctx context.Context, productID, threshold int64) error {
	if _, ok := r.inventory[productID]; !ok {
		r.inventory[productID] = Inventory{ID: productID, ProductID: productID, LowStockThreshold: threshold}
	}
	return nil
}

func (r *memoryRepo) GetItem(ctx context.Context, productID int64) (Item, error) {
	inv, ok := r.inventory[productID]
	if !ok {
		return Item{}, ErrInventoryNotFound
	}
	return Item{ProductID: productID, StockQuantity: inv.StockQuantity, LowStockThreshold: inv.LowStockThreshold}, nil
}

func (r *memoryRepo) ListItems(ctx context.Context) ([]Item, error) {
	items := []Item{}
	for id := range r.inventory {
		item, _ := r.GetItem(ctx, id)
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepo) ListLowStock(ctx context.Context) ([]Item, error) {
	items := []Item{}
	for id, inv := range r.inventory {
		if inv.StockQuantity <= inv.LowStockThreshold {
			item, _ := r.GetItem(ctx, id)
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	out := []StockMovement{}
	for _, m := range r.movements {
		if filter.ProductID != 0 && m.ProductID != filter.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) ProductsMissingInventory(ctx context.Context) ([]MissingInventory, error) {
	return nil, nil
}

func (tx *memoryTx) GetInventoryForUpdate(ctx context.Context, productID int64) (Inventory, error) {
	inv, ok := tx.repo.inventory[productID]
	if !ok {
		return Inventory{}, ErrInventoryNotFound
	}
	return inv, nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, m StockMovement) (int64, error) {
	tx.repo.nextID++
	m.ID = tx.repo.nextID
	tx.repo.movements = append(tx.repo.movements, m)
	return m.ID, nil
}

func (tx *memoryTx) UpdateStockQuantity(ctx context.Context, productID, quantity int64) error {
	inv, ok := tx.repo.inventory[productID]
	if !ok {
		return ErrInventoryNotFound
	}
	inv.StockQuantity = quantity
	tx.repo.inventory[productID] = inv
	return nil
}

func ledgerSum(movements []StockMovement) int64 {
	var sum int64
	for _, m := range movements {
		if m.Type == MovementIn {
			sum += m.Quantity
		} else {
			sum -= m.Quantity
		}
	}
	return sum
}

type fakeReportCache struct {
	invalidations int
}

func (f *fakeReportCache) Invalidate(context.Context) { f.invalidations++ }

var testActor = shared.Actor{ID: 7, Username: "worker1", Role: shared.RoleWorker}

func TestStockWritesInvalidateReportCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 50, 10)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	cache := &fakeReportCache{}
	svc.SetReportCache(cache)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 5, Reason: ReasonSale, Actor: testActor})
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidations)

	_, err = svc.SetStock(ctx, 1, 80, testActor)
	require.NoError(t, err)
	require.Equal(t, 2, cache.invalidations)

	// Rejected movements leave the cache untouched.
	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 999, Reason: ReasonSale, Actor: testActor})
	require.Error(t, err)
	require.Equal(t, 2, cache.invalidations)
}

func TestLedgerSumMatchesStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 0, 10)
	svc := NewService(repo, nil, nil, ServiceConfig{DefaultLowStockThreshold: 10})
	ctx := context.Background()

	steps := []struct {
		typ MovementType
		qty int64
	}{
		{MovementIn, 40}, {MovementIn, 25}, {MovementOut, 12}, {MovementOut, 3}, {MovementIn, 5},
	}
	for _, step := range steps {
		_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: step.typ, Quantity: step.qty, Reason: ReasonAdjustment, Actor: testActor})
		require.NoError(t, err)
	}

	require.EqualValues(t, 55, repo.inventory[1].StockQuantity)
	require.EqualValues(t, repo.inventory[1].StockQuantity, ledgerSum(repo.movements))
}

func TestInsufficientStockRejected(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 50, 10)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 55, Reason: ReasonSale, Actor: testActor})
	require.Error(t, err)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.EqualValues(t, 50, insufficient.Available)
	require.EqualValues(t, 55, insufficient.Requested)
	require.Contains(t, err.Error(), "Available: 50")
	require.Contains(t, err.Error(), "Requested: 55")

	// A rejected movement persists nothing.
	require.EqualValues(t, 50, repo.inventory[1].StockQuantity)
	require.Empty(t, repo.movements)

	// OUT of exactly the available stock succeeds.
	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 45, Reason: ReasonSale, Actor: testActor})
	require.NoError(t, err)
	require.EqualValues(t, 5, repo.inventory[1].StockQuantity)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
}

func TestInvalidInputRejectedBeforeAnyRead(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 5)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 0, Reason: ReasonSale, Actor: testActor})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: -4, Reason: ReasonSale, Actor: testActor})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: "SIDEWAYS", Quantity: 4, Reason: ReasonSale, Actor: testActor})
	require.ErrorIs(t, err, ErrInvalidMovementType)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementIn, Quantity: 4, Reason: "WHIM", Actor: testActor})
	require.ErrorIs(t, err, ErrInvalidReason)

	require.Empty(t, repo.movements)
	require.EqualValues(t, 10, repo.inventory[1].StockQuantity)
}

func TestMovementWithoutInventoryRow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{})

	_, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: 42, Type: MovementIn, Quantity: 1, Reason: ReasonPurchase, Actor: testActor})
	require.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestSetStockRejectsNegative(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 30, 5)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.SetStock(ctx, 1, -1, testActor)
	require.ErrorIs(t, err, ErrNegativeStock)
	require.EqualValues(t, 30, repo.inventory[1].StockQuantity)

	inv, err := svc.SetStock(ctx, 1, 0, testActor)
	require.NoError(t, err)
	require.EqualValues(t, 0, inv.StockQuantity)
}

func TestConcurrentOutMovementsDoNotLoseUpdates(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 2)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Type: MovementOut, Quantity: 5, Reason: ReasonSale, Actor: testActor})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 0, repo.inventory[1].StockQuantity)
	require.Len(t, repo.movements, 2)
}

func TestEnsureInventoryExistsIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{DefaultLowStockThreshold: 10})
	ctx := context.Background()

	require.NoError(t, svc.EnsureInventoryExists(ctx, 9))
	require.NoError(t, svc.EnsureInventoryExists(ctx, 9))

	inv := repo.inventory[9]
	require.EqualValues(t, 0, inv.StockQuantity)
	require.EqualValues(t, 10, inv.LowStockThreshold)
}

func TestMovementCarriesActorIdentity(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 0, 5)
	svc := NewService(repo, nil, nil, ServiceConfig{})

	m, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: 1, Type: MovementIn, Quantity: 3, Reason: ReasonReturn, Actor: testActor})
	require.NoError(t, err)
	require.Equal(t, "worker1", m.CreatedBy)
	require.False(t, m.MovementDate.IsZero())
}
