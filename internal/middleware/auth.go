package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"fleetops/internal/domain"
)

// Auth validates the HS256 bearer token and stores the resulting principal
// in the request context. The token must carry the subject, the tenant
// identifier, and the principal's roles; the tenant claim is the only
// place a request's tenant can come from. Requests without a valid token
// get 401.
func Auth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeUnauthorized(w)
				return
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			principal, ok := ParseToken(jwtSecret, tokenStr)
			if !ok {
				writeUnauthorized(w)
				return
			}

			ctx := domain.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken validates an HS256 token and extracts the principal. The sub
// and tenant claims are required; roles is an optional string array.
func ParseToken(jwtSecret []byte, tokenStr string) (domain.ContextPrincipal, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.ContextPrincipal{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.ContextPrincipal{}, false
	}
	sub, _ := claims["sub"].(string)
	tenantID, _ := claims["tenant"].(string)
	if sub == "" || tenantID == "" {
		return domain.ContextPrincipal{}, false
	}

	var roles []string
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, raw := range rawRoles {
			if role, ok := raw.(string); ok {
				roles = append(roles, role)
			}
		}
	}

	return domain.ContextPrincipal{Name: sub, TenantID: tenantID, Roles: roles}, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    401,
		"message": "unauthorized: provide a valid bearer token",
	})
}
