package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AdminPermission = "admin"
	AdminRole       = "admin"

	identityKey = "identity"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	if c.Role == AdminRole {
		return true
	}
	for _, p := range c.Permissions {
		if p == AdminPermission {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller attached to the gin context.
type Identity struct {
	UserID primitive.ObjectID
	Email  string
	Admin  bool
}

type Authenticator struct {
	secret       []byte
	expiry       time.Duration
	trustGateway bool
}

func NewAuthenticator(secret string, expiry time.Duration, trustGateway bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), expiry: expiry, trustGateway: trustGateway}
}

func (a *Authenticator) GenerateToken(userID, email string, admin bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if admin {
		claims.Role = AdminRole
		claims.Permissions = []string{AdminPermission}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidToken)
	}
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAuth resolves the caller from a bearer token, or from the
// X-User-ID / X-User-Permissions headers set by the gateway when trusted.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := a.resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if !identity.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func (a *Authenticator) resolve(c *gin.Context) (Identity, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		claims, err := a.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return Identity{}, err
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: malformed user id", ErrInvalidToken)
		}
		return Identity{UserID: userID, Email: claims.Email, Admin: claims.IsAdmin()}, nil
	}

	if a.trustGateway {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			userID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return Identity{}, fmt.Errorf("%w: malformed user id", ErrInvalidToken)
			}
			perms := &Claims{Permissions: strings.Split(c.GetHeader("X-User-Permissions"), ",")}
			return Identity{UserID: userID, Email: c.GetHeader("X-User-Email"), Admin: perms.IsAdmin()}, nil
		}
	}
	return Identity{}, ErrInvalidToken
}
