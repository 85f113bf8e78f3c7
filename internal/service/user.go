package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/id"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// UserService handles registration and the contacts read path.
// Registration fans the new user out into every existing contacts
// document; it never touches search caches because a fresh user cannot
// appear in any cached result set.
type UserService struct {
	store  *sqlite.Store
	cache  *cache.Cache
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *sqlite.Store, c *cache.Cache, logger *slog.Logger) *UserService {
	return &UserService{store: store, cache: c, logger: logger}
}

// Register creates a user and seeds the contacts caches: the new user
// gets a document listing everyone else, and every existing document
// gains the new user. Cache failures are logged and do not fail the
// registration. A duplicate username is a CONFLICT.
func (s *UserService) Register(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:        id.MustGenerate("user"),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	// Seed the new user's own contacts document.
	others := make([]domain.Contact, len(existing))
	for i, o := range existing {
		others[i] = o.AsContact()
	}
	if err := s.cache.StoreContacts(u.ID, others); err != nil {
		s.logger.Warn("failed to seed contacts cache", "user_id", u.ID, "error", err)
	}

	// Fan the new user out into everyone else's document. Each append is
	// independent; a failed one is rebuilt on that user's next read.
	contact := u.AsContact()
	for _, o := range existing {
		if err := s.cache.AppendContact(o.ID, contact); err != nil {
			s.logger.Warn("failed to fan out contact",
				"user_id", o.ID, "new_user_id", u.ID, "error", err)
		}
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", username)
	return u, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, userID)
}

// ListUsers returns every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// ListContacts serves a user's contact list cache-first, rebuilding the
// document from the relational store on a miss.
func (s *UserService) ListContacts(ctx context.Context, userID string) ([]domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, ok, err := s.cache.LookupContacts(userID)
	if err != nil {
		s.logger.Warn("contacts cache lookup failed, falling back to store",
			"user_id", userID, "error", err)
	}
	if ok {
		return doc.Contacts, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	contacts := make([]domain.Contact, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		contacts = append(contacts, u.AsContact())
	}

	if err := s.cache.StoreContacts(userID, contacts); err != nil {
		s.logger.Warn("failed to rebuild contacts cache", "user_id", userID, "error", err)
	}
	return contacts, nil
}
