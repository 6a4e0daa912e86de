package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials are the bearer tokens issued by the backend at login.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether no access token is held.
func (c Credentials) IsZero() bool {
	return c.AccessToken == ""
}

// AccessExpiry decodes the exp claim of the access token without verifying
// its signature. It is informational only: a 401 is what triggers refresh.
func (c Credentials) AccessExpiry() (time.Time, bool) {
	if c.AccessToken == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// UserInfo is the account behind the current credentials.
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is one viewer profile under an account.
type Profile struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Avatar      string         `json:"avatar,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// ListEntry is one item on the user's list.
type ListEntry struct {
	ID         int64     `json:"id,omitempty"`
	ItemID     int64     `json:"item_id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	MediaType  MediaKind `json:"media_type,omitempty"`
	AddedDate  time.Time `json:"added_date,omitempty"`
}
