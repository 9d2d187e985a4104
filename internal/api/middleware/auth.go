package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/jwthelper"
)

const (
	ContextKeyUserID   = "userID"
	ContextKeyRole     = "role"
	ContextKeyOperator = "operator"
)

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to another client")
	errRoleNotAllowed    = errors.New("role is not allowed on this route")
	errEventNotAllowed   = errors.New("operator is not assigned to this event")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT accepts the token from the Authorization header, or from the
// token query parameter for websocket upgrades where browsers cannot set
// headers.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		if claims.UserAgent != "" && claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserAgentMismatch))
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Set(ContextKeyRole, claims.Role)
		ctx.Next()
	}
}

// OptionalJWT authenticates the request when a token is present and lets
// anonymous requests through.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	verify := a.VerifyJWT()
	return func(ctx *gin.Context) {
		if bearerToken(ctx) == "" {
			ctx.Next()
			return
		}
		verify(ctx)
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ctx.Query("token")
}

// RequireRoles lets the request through only when the token role is one of
// roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString(ContextKeyRole)
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}

		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("%w: %q", errRoleNotAllowed, role)))
	}
}

type OperatorFinder interface {
	GetOperator(ctx context.Context, id uint) (domain.Operator, error)
}

// RequireEventAccess restricts operators to the events they are assigned
// to. Dashboard users pass through. The loaded operator is stored under
// ContextKeyOperator.
func RequireEventAccess(operators OperatorFinder, param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString(ContextKeyRole) != domain.RoleOperator {
			ctx.Next()
			return
		}

		eventID, err := strconv.ParseUint(ctx.Param(param), 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s: %w", param, err)))
			return
		}

		operator, err := operators.GetOperator(ctx.Request.Context(), UserID(ctx))
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(fmt.Errorf("operators.GetOperator -> %w", err)))
			return
		}
		if !operator.CanOperate(uint(eventID)) {
			response.RenderErr(ctx, response.ErrPermissionDenied(errEventNotAllowed))
			return
		}

		ctx.Set(ContextKeyOperator, operator)
		ctx.Next()
	}
}

func UserID(ctx *gin.Context) uint {
	return ctx.GetUint(ContextKeyUserID)
}

func Role(ctx *gin.Context) string {
	return ctx.GetString(ContextKeyRole)
}

// ActorFrom builds the actor recorded by the services for the
// authenticated request.
func ActorFrom(ctx *gin.Context) domain.Actor {
	actor := domain.Actor{
		ID:        UserID(ctx),
		Type:      domain.ActorUser,
		RequestID: requestid.Get(ctx),
	}
	if Role(ctx) == domain.RoleOperator {
		actor.Type = domain.ActorOperator
	}
	return actor
}
