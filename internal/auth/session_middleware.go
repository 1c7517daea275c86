package auth

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sessions resolves the session cookie to a persisted user and attaches it to
// the request context. Requests with no cookie, a bad token, or a vanished
// user proceed as anonymous; endpoints that need a caller gate with Require.
func Sessions(a *AuthService, users *Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := a.Parse(c.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			oid, err := primitive.ObjectIDFromHex(claims.Sub)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.ByID(r.Context(), oid)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Require rejects requests whose session did not resolve to a user.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
