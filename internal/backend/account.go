package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a token pair and stores it.
// Bad credentials surface as a 401 *domain.HTTPError without any refresh.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload, err := encodeBody(loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	body, err := c.send(ctx, http.MethodPost, "/token/", payload, "", uuid.NewString())
	if err != nil {
		return err
	}

	var tokens tokenPair
	if err := decodeBody(body, &tokens); err != nil {
		return err
	}
	if tokens.Access == "" {
		return errors.New("login response carried no access token")
	}

	if err := c.tokens.Set(domain.Credentials{AccessToken: tokens.Access, RefreshToken: tokens.Refresh}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	c.logger.Info("logged in", "username", username)
	return nil
}

// Logout destroys the stored credentials and fires the session hook
func (c *Client) Logout() error {
	if err := c.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	c.sessionTerminated()
	c.logger.Info("logged out")
	return nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	payload, err := encodeBody(registerRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}
	_, err = c.send(ctx, http.MethodPost, "/register/", payload, "", uuid.NewString())
	return err
}

// UserInfo returns the account behind the stored credentials
func (c *Client) UserInfo(ctx context.Context) (*domain.UserInfo, error) {
	var info domain.UserInfo
	if err := c.Do(ctx, http.MethodGet, "/user/info/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Profiles returns every profile under the account
func (c *Client) Profiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := c.Do(ctx, http.MethodGet, "/profiles/", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// CreateProfile adds a profile and returns it as stored
func (c *Client) CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	var created domain.Profile
	if err := c.Do(ctx, http.MethodPost, "/profiles/create/", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProfile replaces a profile's name, avatar and preferences
func (c *Client) UpdateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	var updated domain.Profile
	path := fmt.Sprintf("/profiles/%d/update/", p.ID)
	if err := c.Do(ctx, http.MethodPut, path, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProfile removes a profile
func (c *Client) DeleteProfile(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/profiles/%d/delete/", id), nil, nil)
}

// MyList returns the saved items
func (c *Client) MyList(ctx context.Context) ([]domain.ListEntry, error) {
	var entries []domain.ListEntry
	if err := c.Do(ctx, http.MethodGet, "/mylist/", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddToList saves an item. Adding an item already on the list is a 400.
func (c *Client) AddToList(ctx context.Context, entry domain.ListEntry) (*domain.ListEntry, error) {
	req := struct {
		ItemID     int64            `json:"item_id"`
		Title      string           `json:"title"`
		PosterPath string           `json:"poster_path"`
		MediaType  domain.MediaKind `json:"media_type"`
	}{entry.ItemID, entry.Title, entry.PosterPath, entry.MediaType}

	var added domain.ListEntry
	if err := c.Do(ctx, http.MethodPost, "/mylist/add/", req, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// RemoveFromList deletes an item by its catalog id
func (c *Client) RemoveFromList(ctx context.Context, itemID int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/mylist/remove/%d/", itemID), nil, nil)
}

// Compile-time interface check
var _ domain.AccountRepository = (*Client)(nil)
