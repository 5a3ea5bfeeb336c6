package tokens

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// TypRefresh is the purpose tag embedded in refresh tokens. Access tokens
// carry no tag; the two classes are additionally separated by signing secret.
const TypRefresh = "refresh"

type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Email string `json:"email"`
	Typ   string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

func (c *RefreshClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
