package access

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const identityContextKey = "identity"

// IdentityMiddleware resolves the caller's identity from a Bearer token and
// stores it in the gin context. A missing or invalid token yields an
// unauthenticated identity instead of an HTTP error; whether that matters
// is the access evaluator's call, not the middleware's.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(identityContextKey, resolveIdentity(ctx.GetHeader("Authorization"), jwtSecret))
		ctx.Next()
	}
}

// GetIdentityFromContext returns the identity placed by IdentityMiddleware,
// or a zero (unauthenticated) identity when the middleware did not run.
func GetIdentityFromContext(ctx *gin.Context) Identity {
	if value, exists := ctx.Get(identityContextKey); exists {
		if identity, ok := value.(Identity); ok {
			return identity
		}
	}
	return Identity{}
}

func resolveIdentity(authorizationHeader, jwtSecret string) Identity {
	token := strings.TrimSpace(authorizationHeader)
	if token == "" || jwtSecret == "" {
		return Identity{}
	}

	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}
	}

	identity := Identity{Authenticated: true}

	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		identity.Username = username
	} else if subject, ok := claims["sub"].(string); ok {
		identity.Username = subject
	}

	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, rawRole := range rawRoles {
			if role, ok := rawRole.(string); ok {
				identity.Roles = append(identity.Roles, role)
			}
		}
	}

	return identity
}
