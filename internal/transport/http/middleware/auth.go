package middleware

import (
	"context"
	"net/http"
	"strings"

	"orgaudit/internal/domain/auth"
	"orgaudit/internal/transport/http/api"
)

type ctxKey string

const ctxKeyClient ctxKey = "client"

// Auth attaches the bearer token's client to the context. Requests without a
// valid token pass through anonymous; RequireAuth and RequirePermission gate routes.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithClient(r.Context(), auth.ClientContext{
				ClientID: claims.ClientID,
				TenantID: claims.TenantID,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithClient(ctx context.Context, client auth.ClientContext) context.Context {
	return context.WithValue(ctx, ctxKeyClient, client)
}

func GetClient(ctx context.Context) (auth.ClientContext, bool) {
	client, ok := ctx.Value(ctxKeyClient).(auth.ClientContext)
	return client, ok
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClient(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
