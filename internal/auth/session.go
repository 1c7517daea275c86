package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie carries the signed session token. Always HTTP-only.
	SessionCookie = "qm_session"
	sessionTTL    = 30 * 24 * time.Hour
)

// AuthService mints and parses session tokens and owns the cookie policy.
// secure selects the cross-site production cookie attributes.
type AuthService struct {
	hmac   []byte
	secure bool
}

func NewAuthService(secret string, secure bool) *AuthService {
	return &AuthService{hmac: []byte(secret), secure: secure}
}

type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quizmentor",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// SetSessionCookie writes the session cookie. Cross-site deployments need
// Secure + SameSite=None so the browser sends it from the frontend origin;
// local same-site deployments use Lax without Secure.
func (a *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(sessionTTL),
	}
	if a.secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	} else {
		c.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, c)
}

func (a *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	}
	if a.secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	} else {
		c.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, c)
}
