package user

import "trophyangler/internal/domain"

// SyncUserRequest is the profile pushed by the identity provider.
type SyncUserRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	IsPremium bool    `json:"is_premium"`
}

type SyncResult string

const (
	ResultCreated SyncResult = "created"
	ResultUpdated SyncResult = "updated"
)

type SyncUserResponse struct {
	User   *domain.User `json:"user"`
	Status SyncResult   `json:"status"`
}

type DeleteUserResponse struct {
	TrophiesRemoved int64 `json:"trophies_removed"`
}
