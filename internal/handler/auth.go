package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie carries the access token for browser clients. API clients send
// it as a bearer token instead.
const TokenCookie = "__carelink_shift_token"

type AuthClaims struct {
	Role     string `json:"role"`
	AgencyID int64  `json:"agency_id"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an HS256 token for userID. Login itself lives in the
// identity service; this is used by tooling and tests.
func NewAccessToken(secret string, userID int64, role domain.UserRole, agencyID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role:     string(role),
		AgencyID: agencyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	})

	return token.SignedString([]byte(secret))
}

var errNoToken = errors.New("no access token")

func tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return "", errNoToken
		}
		return token, nil
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", errNoToken
		}
		return "", err
	}

	return cookie.Value, nil
}

func (h *Handler) parseToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.config.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// actorID is the numeric subject of the access token.
func actorID(r *http.Request) int64 {
	id, _ := r.Context().Value(SubCtxKey).(int64)
	return id
}

func agencyID(r *http.Request) int64 {
	id, _ := r.Context().Value(AgencyCtxKey).(int64)
	return id
}

func role(r *http.Request) domain.UserRole {
	role, _ := r.Context().Value(RoleCtxKey).(domain.UserRole)
	return role
}
