package domain

import "time"

// Account is the application's own profile and role row, keyed by identity id.
type Account struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Bio         string
	IsVerified  bool
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountUpdate carries optional account changes; nil fields are left untouched.
type AccountUpdate struct {
	Username    *string
	DisplayName *string
	AvatarURL   *string
	Bio         *string
	IsVerified  *bool
	Role        *Role
}

// Empty reports whether no field is set.
func (u AccountUpdate) Empty() bool {
	return u.Username == nil && u.DisplayName == nil && u.AvatarURL == nil &&
		u.Bio == nil && u.IsVerified == nil && u.Role == nil
}

// Apply copies the set fields onto a.
func (u AccountUpdate) Apply(a *Account) {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.DisplayName != nil {
		a.DisplayName = *u.DisplayName
	}
	if u.AvatarURL != nil {
		a.AvatarURL = *u.AvatarURL
	}
	if u.Bio != nil {
		a.Bio = *u.Bio
	}
	if u.IsVerified != nil {
		a.IsVerified = *u.IsVerified
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
}

// Profile is the public view of an account with social counters.
type Profile struct {
	Account        Account
	FollowerCount  int64
	FollowingCount int64
	ModelCount     int64
}
