package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sabbir-tanvir/storefront/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the signed-in user behind a request.
type Principal struct {
	Token  string
	Claims auth.Claims
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.Token != ""
}

// RequireAuth rejects requests without a principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireShopOwner rejects requests whose principal does not own a shop.
// It implies RequireAuth.
func RequireShopOwner(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		if !p.Claims.IsShopOwner() {
			writeError(w, http.StatusForbidden, "shop owner access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
