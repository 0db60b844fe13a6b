package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/guia-app/guia/internal/client/models"
)

// ErrTokenMismatch means the access token names a different user than the
// one the server returned with it.
var ErrTokenMismatch = errors.New("access token belongs to another user")

// Claims are the parts of an access token the client looks at. The
// signature is not verified; the server remains the authority.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carries an exp claim.
func (c Claims) HasExpiry() bool { return !c.ExpiresAt.IsZero() }

var userIDClaims = []string{"user_id", "uid", "sub"}

// ParseClaims reads the claims of a JWT access token. ok is false for
// opaque tokens.
func ParseClaims(token string) (Claims, bool) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}

	var c Claims
	for _, name := range userIDClaims {
		if id := claimString(mc[name]); id != "" {
			c.UserID = id
			break
		}
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}

func claimString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// checkClaims rejects a token whose user id claim disagrees with user.
// Opaque tokens and tokens without a user id pass.
func checkClaims(token string, user *models.User) error {
	c, isJWT := ParseClaims(token)
	if !isJWT || c.UserID == "" || user == nil || user.ID.IsZero() {
		return nil
	}
	if c.UserID != user.ID.String() {
		return fmt.Errorf("%w: token user %s, session user %s", ErrTokenMismatch, c.UserID, user.ID)
	}
	return nil
}
