package dto

import (
	"time"

	"github.com/vrcface/server/internal/domain"
)

// AccountResponse is the full account view returned to its owner and admins.
type AccountResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	AvatarURL   string      `json:"avatar_url"`
	Bio         string      `json:"bio"`
	IsVerified  bool        `json:"is_verified"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	Bio            string    `json:"bio"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	ModelCount     int64     `json:"model_count"`
}

// UpdateProfileRequest payload for PATCH /api/users/me.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

// AccountUpdates lists the fields an admin may change.
type AccountUpdates struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
	IsVerified  *bool   `json:"is_verified"`
	Role        *string `json:"role"`
}

// AdminUpdateUserRequest payload for PATCH /api/admin/users.
type AdminUpdateUserRequest struct {
	UserID  string         `json:"userId"`
	Updates AccountUpdates `json:"updates"`
}

// AdminDeleteUserRequest payload for DELETE /api/admin/users.
type AdminDeleteUserRequest struct {
	UserID string `json:"userId"`
}

// StatsResponse admin dashboard counters.
type StatsResponse struct {
	Users       int64            `json:"users"`
	Models      int64            `json:"models"`
	Tags        int64            `json:"tags"`
	Likes       int64            `json:"likes"`
	UsersByRole map[string]int64 `json:"users_by_role"`
}
