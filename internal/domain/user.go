package domain

import "time"

// User is the catalog's copy of an identity-provider profile.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	Username  string    `json:"username" gorm:"not null;uniqueIndex" validate:"required,min=2,max=40"`
	AvatarURL *string   `json:"avatar_url,omitempty" validate:"omitempty,uri"`
	Bio       *string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	IsPremium bool      `json:"is_premium" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PublicProfile is the subset of a user shown to other callers.
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
	}
}

// Caller is the authenticated identity behind a request. A zero Caller is anonymous.
type Caller struct {
	ID string
}

func (c Caller) Anonymous() bool { return c.ID == "" }
