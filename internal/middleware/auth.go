package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/pkg/jwt"
	"marketadmin/internal/pkg/response"
	"marketadmin/internal/policy"
)

const actorKey = "actor"

// Session cookies. The CSRF cookie is readable by scripts so the console can
// echo it in CSRFHeader.
const (
	AccessCookie  = "admin_access"
	RefreshCookie = "admin_refresh"
	CSRFCookie    = "admin_csrf"
	CSRFHeader    = "X-CSRFToken"
)

var (
	errCSRFMissing  = apperror.Forbidden("CSRF token missing.")
	errCSRFMismatch = apperror.Forbidden("CSRF token mismatch.")
)

// AccountLoader resolves the account behind a token.
type AccountLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

// JWTAuth validates the bearer token, or the access cookie when no header is
// sent, and resolves the actor from the store so role changes apply to tokens
// issued before them. Cookie sessions must echo the CSRF cookie on unsafe methods.
func JWTAuth(tokens *jwt.Service, accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		fromCookie := false
		if !ok {
			raw, ok = cookieToken(c)
			fromCookie = ok
		}
		if !ok {
			response.Abort(c, apperror.Unauthenticated("Authentication credentials were not provided"))
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			response.Abort(c, &apperror.Error{Kind: apperror.KindUnauthenticated, Message: "Invalid or expired token", Err: err})
			return
		}

		acc, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Abort(c, apperror.Unauthenticated("Account no longer exists"))
				return
			}
			response.Abort(c, err)
			return
		}
		if !acc.IsActive {
			response.Abort(c, apperror.Unauthenticated("Account is disabled"))
			return
		}
		if acc.Profile == nil {
			response.Abort(c, apperror.Unauthenticated("Missing administrator profile"))
			return
		}
		if fromCookie {
			if err := checkCSRF(c); err != nil {
				response.Abort(c, err)
				return
			}
		}

		SetActor(c, policy.NewActor(acc))
		c.Next()
	}
}

// SetActor stores actor on the request context.
func SetActor(c *gin.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
	c.Set("role", string(actor.Role))
}

// ActorFrom returns the actor resolved by JWTAuth, or the zero actor.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(policy.Actor); ok {
			return a
		}
	}
	return policy.Actor{}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func cookieToken(c *gin.Context) (string, bool) {
	v, err := c.Cookie(AccessCookie)
	if err != nil {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// checkCSRF is the double-submit check: the header must repeat the CSRF cookie.
func checkCSRF(c *gin.Context) error {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return nil
	}
	cookie, _ := c.Cookie(CSRFCookie)
	header := c.GetHeader(CSRFHeader)
	if cookie == "" || header == "" {
		return errCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
		return errCSRFMismatch
	}
	return nil
}
