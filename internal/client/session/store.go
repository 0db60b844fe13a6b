package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guia-app/guia/internal/client/models"
)

// Storage keys. They match what earlier clients wrote, so an existing
// session survives an upgrade.
const (
	KeyToken        = "guia_token"
	KeyRefreshToken = "guia_refresh_token"
	KeyUser         = "guia_user"
)

// Keys lists every key owned by a session.
var Keys = []string{KeyToken, KeyRefreshToken, KeyUser}

var (
	// ErrNoSession is returned by SaveUser when no credentials are stored.
	ErrNoSession = errors.New("no stored session")
	// ErrInvalidSession is returned by Save for an empty token or nil user.
	ErrInvalidSession = errors.New("session requires an access token and a user")
)

// Snapshot is a complete persisted session.
type Snapshot struct {
	Credentials models.Credentials
	User        *models.User
}

// Store persists a session. Load returns (nil, nil) when nothing usable is
// stored.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, creds models.Credentials, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	Clear(ctx context.Context) error
}

func checkSave(creds models.Credentials, user *models.User) error {
	if !creds.Complete() || user == nil {
		return ErrInvalidSession
	}
	return nil
}

func encodeUser(u *models.User) ([]byte, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return b, nil
}

// decodeSnapshot builds a Snapshot from raw key values. complete is false
// when any key is missing or the user does not decode.
func decodeSnapshot(values map[string][]byte) (snap *Snapshot, complete bool) {
	token, okToken := values[KeyToken]
	refresh, okRefresh := values[KeyRefreshToken]
	rawUser, okUser := values[KeyUser]
	if !okToken || !okRefresh || !okUser || len(token) == 0 {
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, false
	}

	return &Snapshot{
		Credentials: models.Credentials{AccessToken: string(token), RefreshToken: string(refresh)},
		User:        &user,
	}, true
}
