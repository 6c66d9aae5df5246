package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrUserNotFound = errors.New("user not found")

// Profile is the user-service view of a user, attached to conversation
// summaries for rendering.
type Profile struct {
	ID        int    `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Status    string `json:"status"`
}

// Directory exposes the user-service roster to the messaging core.
type Directory interface {
	ListOthers(ctx context.Context, userID int) ([]Profile, error)
	Get(ctx context.Context, userID int) (Profile, error)
}

// HTTPDirectory talks to the user service over its internal REST API, with
// an optional redis read-through cache for single-profile lookups.
type HTTPDirectory struct {
	base     string
	client   *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewHTTPDirectory constructs the client. cache may be nil.
func NewHTTPDirectory(baseURL string, cache *redis.Client) *HTTPDirectory {
	return &HTTPDirectory{
		base:     baseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		cache:    cache,
		cacheTTL: 5 * time.Minute,
	}
}

// ListOthers returns every user except userID.
func (d *HTTPDirectory) ListOthers(ctx context.Context, userID int) ([]Profile, error) {
	var users []Profile
	if err := d.getJSON(ctx, fmt.Sprintf("%s/internal/users?exclude=%d", d.base, userID), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches a single profile, preferring the cache.
func (d *HTTPDirectory) Get(ctx context.Context, userID int) (Profile, error) {
	key := fmt.Sprintf("profile:%d", userID)
	if d.cache != nil {
		if raw, err := d.cache.Get(ctx, key).Result(); err == nil {
			var p Profile
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p, nil
			}
		}
	}

	var p Profile
	if err := d.getJSON(ctx, fmt.Sprintf("%s/internal/users/%d", d.base, userID), &p); err != nil {
		return Profile{}, err
	}

	if d.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			_ = d.cache.Set(ctx, key, raw, d.cacheTTL).Err()
		}
	}
	return p, nil
}

func (d *HTTPDirectory) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("user service request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("user service responded %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
