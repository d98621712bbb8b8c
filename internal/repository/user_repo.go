package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trophyangler/internal/domain"
)

type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Upsert stores the profile mirrored from the identity provider. The
// returned bool is true when the user did not exist before.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, translateError(err)
	}
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	u.Username = strings.TrimSpace(u.Username)

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := normalize(r.now())

		var existing domain.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", u.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			u.CreatedAt = now
			u.UpdatedAt = now
			return tx.Create(u).Error
		case err != nil:
			return err
		}

		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = now
		return tx.Model(&domain.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
			"email":      u.Email,
			"username":   u.Username,
			"avatar_url": u.AvatarURL,
			"bio":        u.Bio,
			"is_premium": u.IsPremium,
			"updated_at": u.UpdatedAt,
		}).Error
	})
	if err != nil {
		return false, translateError(err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// Delete removes the user and, in the same transaction, every trophy it owns.
// It returns the number of trophies removed.
func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, translateError(err)
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		var err error
		removed, err = deleteTrophiesOf(tx, id)
		return err
	})
	if err != nil {
		return 0, translateError(err)
	}
	return removed, nil
}
