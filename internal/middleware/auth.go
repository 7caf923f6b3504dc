package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/testhall/config"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/lshigami/testhall/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// Claims is the payload of the bearer tokens issued by the identity service.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
	issuer string
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(cfg.JWT.Secret), issuer: cfg.JWT.Issuer}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: msg})
}

// RequireAuth validates the bearer token and stores the caller's id and role
// in the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.secret) == 0 {
			abortUnauthorized(c, "authentication is not configured")
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing Authorization header")
			return
		}
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "Authorization header must be a Bearer token")
			return
		}

		claims, err := m.parse(strings.TrimSpace(tokenString))
		if err != nil {
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("Auth: Rejected token")
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "token expired")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, scoring.Role(claims.Role))
		c.Next()
	}
}

func (m *AuthMiddleware) parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("token has no user_id")
	}
	switch scoring.Role(claims.Role) {
	case scoring.RoleStudent, scoring.RoleTeacher, scoring.RoleAdmin:
	default:
		return nil, errors.New("token has an unknown role")
	}
	return claims, nil
}

// RequireStaff lets only teachers and admins through. It must run after
// RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !actor.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "staff role required"})
			return
		}
		c.Next()
	}
}

// CurrentActor returns the caller stored by RequireAuth.
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := c.Get(ContextRole)
	if !ok {
		return service.Actor{}, false
	}
	id, idOK := userID.(uint)
	r, roleOK := role.(scoring.Role)
	if !idOK || !roleOK {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: r}, true
}

// IssueToken signs an HS256 token in the format RequireAuth accepts.
func IssueToken(secret, issuer string, userID uint, role scoring.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
