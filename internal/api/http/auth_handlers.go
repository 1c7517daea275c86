package http

import (
	"encoding/json"
	"errors"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/quizmentor/quizmentor-backend/internal/auth"
)

// Handlers only — routes remain in main.go

// GoogleCallbackHandler receives the credential from Google Sign-In on the
// frontend, verifies it, upserts the user and starts a cookie session.
// verifier is nil when no client id is configured.
func GoogleCallbackHandler(verifier auth.TokenVerifier, users *auth.Users, sessions *auth.AuthService, log *zap.SugaredLogger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if verifier == nil {
			writeError(w, nethttp.StatusServiceUnavailable, "Google Sign-In not configured on server.")
			return
		}

		var req struct {
			Credential string `json:"credential"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credential == "" {
			writeError(w, nethttp.StatusBadRequest, "Missing credential token.")
			return
		}

		ident, err := verifier.Verify(r.Context(), req.Credential)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				log.Warnw("rejected google credential", "err", err)
				writeError(w, nethttp.StatusUnauthorized, "Invalid Google sign-in token.")
				return
			}
			log.Errorw("token verification failed", "err", err)
			writeError(w, nethttp.StatusServiceUnavailable, "Could not verify sign-in token.")
			return
		}

		user, err := users.ResolveOrCreate(r.Context(), ident)
		if err != nil {
			log.Errorw("resolving user", "subject", ident.Subject, "err", err)
			writeError(w, nethttp.StatusInternalServerError, "Server error during authentication.")
			return
		}

		token, err := sessions.IssueJWT(user.ID.Hex())
		if err != nil {
			log.Errorw("issuing session token", "err", err)
			writeError(w, nethttp.StatusInternalServerError, "Server error during authentication.")
			return
		}
		sessions.SetSessionCookie(w, token)
		log.Infow("user logged in", "email", user.Email)

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"message": "Login successful",
			"user":    user.Profile(),
		})
	}
}

// LogoutHandler clears the session cookie. Mounted behind auth.Require.
func LogoutHandler(sessions *auth.AuthService, log *zap.SugaredLogger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		user := auth.UserFromContext(r.Context())
		sessions.ClearSessionCookie(w)
		if user != nil {
			log.Infow("user logged out", "email", user.Email)
		}
		writeJSON(w, nethttp.StatusOK, map[string]string{"message": "Logout successful"})
	}
}

// AuthStatusHandler reports whether the session cookie resolved to a user.
func AuthStatusHandler() nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if user := auth.UserFromContext(r.Context()); user != nil {
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"isAuthenticated": true,
				"user":            user.Profile(),
			})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"isAuthenticated": false,
			"user":            nil,
		})
	}
}
