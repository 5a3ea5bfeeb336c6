package auth

import (
	"github.com/labstack/echo/v4"
)

// Identity is the request-scoped authentication result. It travels as one
// typed value instead of loose context keys.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

const identityKey = "auth_identity"

func setIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
