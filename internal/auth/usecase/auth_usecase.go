package usecase

import (
	"errors"
	"fmt"
	"time"

	"recommend-backend/internal/apperr"
	authdomain "recommend-backend/internal/auth/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmailRequired = errors.New("email is required")

// sessionUsecase implements SessionUsecase interface
type sessionUsecase struct {
	secret []byte
	now    func() time.Time
}

// NewSessionUsecase creates a new instance of sessionUsecase signing with secret
func NewSessionUsecase(secret string) SessionUsecase {
	return &sessionUsecase{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (u *sessionUsecase) IssueSession(claims authdomain.Claims) (string, time.Time, error) {
	if claims.Email() == "" {
		return "", time.Time{}, apperr.Validation("%v", ErrEmailRequired)
	}

	now := u.now()
	expiresAt := now.Add(SessionTTL)

	mapClaims := jwt.MapClaims{}
	for k, v := range claims.Identity() {
		mapClaims[k] = v
	}
	mapClaims["iat"] = now.Unix()
	mapClaims["exp"] = expiresAt.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(u.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiresAt, nil
}

func (u *sessionUsecase) VerifySession(tokenString string) (authdomain.Claims, error) {
	if tokenString == "" {
		return nil, apperr.Unauthorized(errors.New("missing credential"))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return u.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized(errors.New("invalid token claims"))
	}

	return authdomain.Claims(claims).Identity(), nil
}
