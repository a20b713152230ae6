package usecase

import (
	"time"

	authdomain "recommend-backend/internal/auth/domain"
)

// SessionTTL is the fixed lifetime of an issued session credential.
const SessionTTL = 24 * time.Hour

// SessionUsecase issues and verifies stateless session credentials.
// There is no server-side revocation: a credential stays valid until it expires.
type SessionUsecase interface {
	IssueSession(claims authdomain.Claims) (token string, expiresAt time.Time, err error)
	VerifySession(token string) (authdomain.Claims, error)
}
