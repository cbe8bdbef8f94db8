package products

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	*memoryRepo
	lastFilter SearchFilter
}

func (r *recordingRepo) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	r.lastFilter = filter
	return r.memoryRepo.Search(ctx, filter)
}

func TestSearchReadsProductCodeParam(t *testing.T) {
	repo := &recordingRepo{memoryRepo: newMemoryRepo()}
	svc := NewService(repo, &fakeProvisioner{}, nil, nil)
	noop := func(next http.Handler) http.Handler { return next }
	handler := NewHandler(slog.New(slog.DiscardHandler), svc, noop)

	router := chi.NewRouter()
	handler.MountRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/products/search?product_code=DRS&cloth_type=DRESS", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DRS", repo.lastFilter.Code)
	require.Equal(t, "DRESS", repo.lastFilter.ClothType)
}
