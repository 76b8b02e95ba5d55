package middleware

import (
	"context"
	"crypto/rsa"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
}

func NewAuthMiddleware(publicKey *rsa.PublicKey) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
	}
}

type contextKey string

const (
	ActorIDKey   contextKey = "actorID"
	ActorNameKey contextKey = "actorName"
	RoleKey      contextKey = "role"
)

// ActorID returns the authenticated staff id from the request context.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(ActorIDKey).(string)
	return id
}

// ActorName returns the authenticated staff display name from the request context.
func ActorName(ctx context.Context) string {
	name, _ := ctx.Value(ActorNameKey).(string)
	return name
}

// Role returns the authenticated role from the request context.
func Role(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

func (m *AuthMiddleware) RequireRole(roles []string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			log.Printf("Missing or malformed Authorization header")
			http.Error(w, "missing authorization", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		})

		if err != nil {
			log.Printf("Token parse error: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if !token.Valid {
			log.Printf("Token not valid")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			log.Printf("Failed to extract claims")
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		actorID, ok := claims["sub"].(string)
		if !ok || actorID == "" {
			log.Printf("Missing or invalid 'sub' claim: %v", claims["sub"])
			http.Error(w, "invalid token: missing subject", http.StatusUnauthorized)
			return
		}

		actorRole, ok := claims["role"].(string)
		if !ok || actorRole == "" {
			log.Printf("Missing or invalid 'role' claim: %v", claims["role"])
			http.Error(w, "invalid token: missing role", http.StatusUnauthorized)
			return
		}

		// Display name is optional in the token; handlers fall back to
		// the staff directory when it is absent.
		actorName, _ := claims["name"].(string)

		allowedRoles := false
		for _, r := range roles {
			if actorRole == r {
				allowedRoles = true
				break
			}
		}
		if !allowedRoles {
			log.Printf("Role mismatch: required one of %v, got %s", roles, actorRole)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), ActorIDKey, actorID)
		ctx = context.WithValue(ctx, ActorNameKey, actorName)
		ctx = context.WithValue(ctx, RoleKey, actorRole)

		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the JWT from the Authorization header, falling back
// to the access_token query parameter for websocket clients that cannot
// set headers.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
