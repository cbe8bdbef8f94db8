package products

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomstock/loomstock/internal/shared"
)

type memoryRepo struct {
	byCode map[string]Product
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byCode: make(map[string]Product)}
}

func (r *memoryRepo) Insert(ctx context.Context, p Product) (Product, error) {
	if _, ok := r.byCode[p.ProductCode]; ok {
		return Product{}, ErrDuplicateCode
	}
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.byCode[p.ProductCode] = p
	return p, nil
}

func (r *memoryRepo) GetByCode(ctx context.Context, code string) (Product, error) {
	p, ok := r.byCode[code]
	if !ok || !p.IsActive {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Product, error) {
	out := []Product{}
	for _, p := range r.byCode {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	out := []Product{}
	for _, p := range r.byCode {
		if !p.IsActive {
			continue
		}
		if filter.ClothType != "" && p.ClothType != filter.ClothType {
			continue
		}
		if filter.FabricType != "" && p.FabricType != filter.FabricType {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, code string, p Product) (Product, error) {
	existing, ok := r.byCode[code]
	if !ok || !existing.IsActive {
		return Product{}, ErrNotFound
	}
	existing.ClothType = p.ClothType
	existing.FabricType = p.FabricType
	existing.Color = p.Color
	existing.SizeSet = p.SizeSet
	existing.UnitPrice = p.UnitPrice
	existing.Description = p.Description
	r.byCode[code] = existing
	return existing, nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, code string) error {
	p, ok := r.byCode[code]
	if !ok || !p.IsActive {
		return ErrNotFound
	}
	p.IsActive = false
	r.byCode[code] = p
	return nil
}

type fakeProvisioner struct {
	calls []int64
	err   error
}

func (f *fakeProvisioner) EnsureInventoryExists(ctx context.Context, productID int64) error {
	f.calls = append(f.calls, productID)
	return f.err
}

type fakeReportCache struct {
	invalidations int
}

func (f *fakeReportCache) Invalidate(context.Context) { f.invalidations++ }

var admin = shared.Actor{ID: 1, Username: "admin", Role: shared.RoleAdmin}

func TestCatalogWritesInvalidateReportCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeProvisioner{}, nil, nil)
	cache := &fakeReportCache{}
	svc.SetReportCache(cache)
	ctx := context.Background()

	created, err := svc.Create(ctx, Product{ProductCode: "DR-010", ClothType: "DRESS", FabricType: "COTTON", Color: "Red", SizeSet: "STANDARD"}, admin)
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidations)

	_, err = svc.Update(ctx, created.ProductCode, Product{ClothType: "DRESS", FabricType: "SILK", Color: "Red", SizeSet: "STANDARD"}, admin)
	require.NoError(t, err)
	require.Equal(t, 2, cache.invalidations)

	require.NoError(t, svc.Delete(ctx, created.ProductCode, admin))
	require.Equal(t, 3, cache.invalidations)

	// A failed write does not touch the cache.
	_, err = svc.Update(ctx, created.ProductCode, Product{ClothType: "DRESS"}, admin)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 3, cache.invalidations)
}

func TestCreateProvisionsInventory(t *testing.T) {
	repo := newMemoryRepo()
	prov := &fakeProvisioner{}
	svc := NewService(repo, prov, nil, nil)

	created, err := svc.Create(context.Background(), Product{ProductCode: "DR-001", ClothType: "DRESS", FabricType: "COTTON", Color: "Red", SizeSet: "STANDARD"}, admin)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, []int64{created.ID}, prov.calls)
}

func TestCreateSucceedsWhenProvisioningFails(t *testing.T) {
	repo := newMemoryRepo()
	prov := &fakeProvisioner{err: errors.New("store unavailable")}
	svc := NewService(repo, prov, nil, nil)

	created, err := svc.Create(context.Background(), Product{ProductCode: "BL-002", ClothType: "BLOUSE", FabricType: "SILK", Color: "White", SizeSet: "PLUS"}, admin)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ProductCode)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeProvisioner{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{ProductCode: "SK-003", ClothType: "SKIRT", FabricType: "DENIM", Color: "Blue", SizeSet: "STANDARD"}, admin)
	require.NoError(t, err)
	_, err = svc.Create(ctx, Product{ProductCode: "SK-003", ClothType: "SKIRT", FabricType: "DENIM", Color: "Black", SizeSet: "STANDARD"}, admin)
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestDeleteIsSoft(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeProvisioner{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{ProductCode: "TP-004", ClothType: "TOP", FabricType: "LINEN", Color: "Green", SizeSet: "STANDARD"}, admin)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "TP-004", admin))
	_, err = svc.Get(ctx, "TP-004")
	require.ErrorIs(t, err, ErrNotFound)

	// The row survives for ledger history.
	stored, ok := repo.byCode["TP-004"]
	require.True(t, ok)
	require.False(t, stored.IsActive)

	require.ErrorIs(t, svc.Delete(ctx, "TP-004", admin), ErrNotFound)
}
