package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/loomstock/loomstock/internal/shared"
)

type memoryRepo struct {
	nextID int64
	users  map[int64]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, users: map[int64]User{}}
}

func (m *memoryRepo) Insert(_ context.Context, u User) (User, error) {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return User{}, ErrDuplicateUsername
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) GetByUsername(_ context.Context, username string) (User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryRepo) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, upd UserUpdate) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.Role != "" {
		u.Role = upd.Role
	}
	if upd.FullName != "" {
		u.FullName = upd.FullName
	}
	if upd.Password != nil {
		u.PasswordHash = *upd.Password
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	return NewService(repo, issuer, nil, slog.New(slog.DiscardHandler)), repo
}

func seedUser(t *testing.T, repo *memoryRepo, username, password, role string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := repo.Insert(context.Background(), User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     username,
	})
	require.NoError(t, err)
	return u
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("round-trip-secret", time.Hour)

	token, err := issuer.Issue(User{ID: 42, Username: "mai", Role: shared.RoleAdmin})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "mai", claims.Username)
	require.Equal(t, shared.RoleAdmin, claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(User{ID: 1, Username: "x", Role: shared.RoleWorker})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("expiry-secret", -time.Minute)

	token, err := issuer.Issue(User{ID: 1, Username: "x", Role: shared.RoleWorker})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "worker1", "correct-horse", shared.RoleWorker)

	token, user, err := svc.Authenticate(context.Background(), "worker1", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "worker1", user.Username)

	_, _, err = svc.Authenticate(context.Background(), "worker1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(context.Background(), "nobody", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDefaultsToWorker(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "newhire", "secret123", "", "New Hire", shared.Actor{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, shared.RoleWorker, user.Role)
	require.NotEqual(t, "secret123", user.PasswordHash)
}

func TestUpdateUserPartialFields(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, "worker1", "old-pass", shared.RoleWorker)
	actor := shared.Actor{ID: 99, Username: "admin", Role: shared.RoleAdmin}

	updated, err := svc.UpdateUser(context.Background(), u.ID, UserUpdate{FullName: "Worker One"}, actor)
	require.NoError(t, err)
	require.Equal(t, "Worker One", updated.FullName)
	require.Equal(t, "worker1", updated.Username)
	require.Equal(t, shared.RoleWorker, updated.Role)
	require.Equal(t, u.PasswordHash, updated.PasswordHash)

	newPass := "new-pass"
	updated, err = svc.UpdateUser(context.Background(), u.ID, UserUpdate{Password: &newPass}, actor)
	require.NoError(t, err)
	require.NotEqual(t, u.PasswordHash, updated.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPass)))
}

func TestSelfDeletionForbidden(t *testing.T) {
	svc, repo := newTestService(t)
	admin := seedUser(t, repo, "admin", "pw", shared.RoleAdmin)
	other := seedUser(t, repo, "other", "pw", shared.RoleWorker)

	actor := shared.Actor{ID: admin.ID, Username: admin.Username, Role: admin.Role}
	require.ErrorIs(t, svc.DeleteUser(context.Background(), admin.ID, actor), ErrSelfDeletion)
	require.NoError(t, svc.DeleteUser(context.Background(), other.ID, actor))
}

func TestAuthenticateMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("mw-secret", time.Hour)
	token, err := issuer.Issue(User{ID: 7, Username: "mw", Role: shared.RoleWorker})
	require.NoError(t, err)

	var seen shared.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(issuer)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(7), seen.ID)
	require.Equal(t, shared.RoleWorker, seen.Role)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(shared.RoleAdmin)(next)

	asActor := func(actor shared.Actor) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		return req.WithContext(shared.ContextWithActor(req.Context(), actor))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asActor(shared.Actor{ID: 1, Role: shared.RoleAdmin}))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, asActor(shared.Actor{ID: 2, Role: shared.RoleWorker}))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
