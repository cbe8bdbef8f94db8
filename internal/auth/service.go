package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/loomstock/loomstock/internal/shared"
)

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	Insert(ctx context.Context, u User) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (User, error)
	Delete(ctx context.Context, id int64) error
}

type ActivityPort interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

type Service struct {
	repo     RepositoryPort
	issuer   *TokenIssuer
	activity ActivityPort
	logger   *slog.Logger
}

func NewService(repo RepositoryPort, issuer *TokenIssuer, activity ActivityPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, activity: activity, logger: logger}
}

// Authenticate checks credentials and issues a bearer token.
// Both unknown-user and bad-password collapse into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", User{}, fmt.Errorf("auth: issue token: %w", err)
	}

	s.recordActivity(ctx, shared.ActivityEntry{
		UserID:   user.ID,
		Username: user.Username,
		Action:   "auth:login",
		Entity:   "user",
		EntityID: strconv.FormatInt(user.ID, 10),
	})
	return token, user, nil
}

// Register creates a new account. Role defaults to worker.
func (s *Service) Register(ctx context.Context, username, password, role, fullName string, actor shared.Actor) (User, error) {
	if role == "" {
		role = shared.RoleWorker
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.Insert(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     fullName,
	})
	if err != nil {
		return User{}, err
	}

	s.recordActivity(ctx, shared.ActivityEntry{
		UserID:   actor.ID,
		Username: actor.Username,
		Action:   "user:create",
		Entity:   "user",
		EntityID: strconv.FormatInt(user.ID, 10),
		Meta:     map[string]any{"username": user.Username, "role": user.Role},
	})
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateUser applies a partial update. A non-nil Password is re-hashed
// before it reaches storage.
func (s *Service) UpdateUser(ctx context.Context, id int64, upd UserUpdate, actor shared.Actor) (User, error) {
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("auth: hash password: %w", err)
		}
		hashed := string(hash)
		upd.Password = &hashed
	}

	user, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return User{}, err
	}

	s.recordActivity(ctx, shared.ActivityEntry{
		UserID:   actor.ID,
		Username: actor.Username,
		Action:   "user:update",
		Entity:   "user",
		EntityID: strconv.FormatInt(user.ID, 10),
	})
	return user, nil
}

// DeleteUser removes an account. Actors cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, id int64, actor shared.Actor) error {
	if id == actor.ID {
		return ErrSelfDeletion
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordActivity(ctx, shared.ActivityEntry{
		UserID:   actor.ID,
		Username: actor.Username,
		Action:   "user:delete",
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

func (s *Service) recordActivity(ctx context.Context, entry shared.ActivityEntry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("activity record failed", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
