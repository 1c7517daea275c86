package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrInvalidToken covers malformed, expired and wrong-audience credentials.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is the verified claim set handed back by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// TokenVerifier validates an opaque identity credential posted by the
// frontend and yields the verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier checks an ID token against Google's tokeninfo endpoint and
// enforces audience and issuer.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: googleTokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, fmt.Errorf("%w: empty credential", ErrInvalidToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.endpoint+"?id_token="+url.QueryEscape(credential), nil)
	if err != nil {
		return Identity{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("tokeninfo fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: tokeninfo status %d", ErrInvalidToken, resp.StatusCode)
	}

	var ti struct {
		Iss     string `json:"iss"`
		Aud     string `json:"aud"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Exp     string `json:"exp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ti); err != nil {
		return Identity{}, fmt.Errorf("tokeninfo parse: %w", err)
	}

	if ti.Aud != g.clientID {
		return Identity{}, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if ti.Iss != "accounts.google.com" && ti.Iss != "https://accounts.google.com" {
		return Identity{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if exp, err := strconv.ParseInt(ti.Exp, 10, 64); err != nil || time.Now().Unix() >= exp {
		return Identity{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if ti.Email == "" {
		return Identity{}, fmt.Errorf("%w: no email in token", ErrInvalidToken)
	}

	return Identity{Subject: ti.Sub, Email: ti.Email, Name: ti.Name, Picture: ti.Picture}, nil
}
