package user

import (
	"context"
	"strings"

	"trophyangler/internal/domain"
	"trophyangler/internal/pkg/logctx"
	"trophyangler/internal/pkg/validator"
)

const maxUserIDLen = 36

type UserStore interface {
	Upsert(ctx context.Context, u *domain.User) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Sync mirrors the identity-provider profile of id. Email and username
// clashes with another user come back as ErrConflict.
func (s *Service) Sync(ctx context.Context, id string, req SyncUserRequest) (*domain.User, SyncResult, error) {
	u := &domain.User{
		ID:        strings.TrimSpace(id),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  strings.TrimSpace(req.Username),
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		IsPremium: req.IsPremium,
	}

	fields := validator.Validate(u)
	if fields == nil {
		fields = map[string]string{}
	}
	switch {
	case u.ID == "":
		fields["id"] = "required"
	case len(u.ID) > maxUserIDLen:
		fields["id"] = "max"
	}
	if len(fields) > 0 {
		return nil, "", domain.NewValidationError(fields)
	}

	created, err := s.users.Upsert(ctx, u)
	if err != nil {
		return nil, "", err
	}

	result := ResultUpdated
	if created {
		result = ResultCreated
	}
	logctx.From(ctx).Info("user synced", "user_id", u.ID, "result", string(result))
	return u, result, nil
}

// Delete removes the user together with all of its trophies.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	removed, err := s.users.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	logctx.From(ctx).Info("user deleted", "user_id", id, "trophies_removed", removed)
	return removed, nil
}

func (s *Service) GetPublic(ctx context.Context, id string) (*domain.PublicProfile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}
