package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/jwthelper"
	"github.com/credenciamento/event-api/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User, requester *domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	LoginOperator(ctx context.Context, document, password string) (domain.Operator, error)
}

type AuthHandler struct {
	conf  *config.APIConfig
	svc   AuthService
	users UserService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, users UserService) *AuthHandler {
	return &AuthHandler{
		conf:  conf,
		svc:   svc,
		users: users,
	}
}

// HandleSignup godoc
// @Summary      Signup a new dashboard user
// @Description  The first account becomes admin and needs no token. Afterwards only admins can create accounts.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/signup [post]
// @Security     BearerAuth
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var requester *domain.User
	if id := middleware.UserID(ctx); id != 0 && middleware.Role(ctx) != domain.RoleOperator {
		user, err := h.users.GetUser(ctx.Request.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}
			err = fmt.Errorf("v1.HandleSignup -> h.users.GetUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
		requester = &user
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	}, requester)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSignup -> h.svc.Signup", err)
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a dashboard user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))
			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, user.Role, ctx.Request.UserAgent(), h.conf.TokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleOperatorLogin godoc
// @Summary      Login a field operator
// @Description  Operators authenticate with CPF and password. The token only grants access to the operator's events.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.OperatorLoginRequest true "request body"
// @Success      200      {object}   response.OperatorLoginResponse
// @Failure      401      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/operators/login [post]
func (h *AuthHandler) HandleOperatorLogin(ctx *gin.Context) {
	req := request.OperatorLoginRequest{}
	if !bindJSON(ctx, &req) {
		return
	}

	operator, err := h.svc.LoginOperator(ctx.Request.Context(), req.CPF, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))
			return
		}

		err = fmt.Errorf("v1.HandleOperatorLogin -> h.svc.LoginOperator -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), operator.ID, domain.RoleOperator, ctx.Request.UserAgent(), h.conf.TokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleOperatorLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OperatorLoginResponse{
		Token:    token,
		Operator: operator,
	})
}
