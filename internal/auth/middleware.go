package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUserID       ctxKey = "userID"
	CtxBusinessType ctxKey = "businessType"
)

const (
	BusinessTypeCustomer = "customer"
	BusinessTypeSupplier = "supplier"
)

// Middleware valida o bearer token e injeta identidade + papel no
// contexto da requisição.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ParseAndValidate(raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxBusinessType, claims.BusinessType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireBusinessType restringe a rota a um papel específico.
func RequireBusinessType(businessType string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bt, _ := r.Context().Value(CtxBusinessType).(string)
		if bt != businessType {
			http.Error(w, "forbidden for this business type", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identity extrai (userID, businessType) do contexto; ok=false quando a
// requisição não passou pelo Middleware.
func Identity(ctx context.Context) (uint, string, bool) {
	id, okID := ctx.Value(CtxUserID).(uint)
	bt, okBT := ctx.Value(CtxBusinessType).(string)
	return id, bt, okID && okBT
}
