package usecase

import (
	"testing"
	"time"

	"recommend-backend/internal/apperr"
	authdomain "recommend-backend/internal/auth/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestUsecase(now time.Time) *sessionUsecase {
	return &sessionUsecase{secret: []byte(testSecret), now: func() time.Time { return now }}
}

func TestSession_RoundTrip(t *testing.T) {
	now := time.Now()
	uc := newTestUsecase(now)

	token, expiresAt, err := uc.IssueSession(authdomain.Claims{"email": "a@b.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, now.Add(SessionTTL).Unix(), expiresAt.Unix())

	claims, err := uc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, authdomain.Claims{"email": "a@b.com"}, claims)
	assert.Equal(t, "a@b.com", claims.Email())
}

func TestSession_ExtraClaimsSurvive(t *testing.T) {
	uc := newTestUsecase(time.Now())

	token, _, err := uc.IssueSession(authdomain.Claims{"email": "a@b.com", "name": "Ann", "exp": 1.0})
	require.NoError(t, err)

	claims, err := uc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "Ann", claims["name"])
	assert.NotContains(t, claims, "exp")
	assert.NotContains(t, claims, "iat")
}

func TestSession_RequiresEmail(t *testing.T) {
	uc := newTestUsecase(time.Now())

	_, _, err := uc.IssueSession(authdomain.Claims{"name": "Ann"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorContains(t, err, ErrEmailRequired.Error())
}

func TestSession_Rejects(t *testing.T) {
	now := time.Now()
	uc := newTestUsecase(now)

	valid, _, err := uc.IssueSession(authdomain.Claims{"email": "a@b.com"})
	require.NoError(t, err)

	expired, _, err := newTestUsecase(now.Add(-SessionTTL - time.Minute)).IssueSession(authdomain.Claims{"email": "a@b.com"})
	require.NoError(t, err)

	otherSecret, _, err := (&sessionUsecase{secret: []byte("other"), now: time.Now}).IssueSession(authdomain.Claims{"email": "a@b.com"})
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"email": "a@b.com",
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@b.com",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"tampered":     valid + "x",
		"expired":      expired,
		"other secret": otherSecret,
		"wrong alg":    wrongAlg,
		"no expiry":    noExpiry,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := uc.VerifySession(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestSession_NotRevokedServerSide(t *testing.T) {
	uc := newTestUsecase(time.Now())

	token, _, err := uc.IssueSession(authdomain.Claims{"email": "a@b.com"})
	require.NoError(t, err)

	// logging out only clears the cookie; a replayed credential still verifies
	claims, err := uc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email())
}
