package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whopranjalshah/me-api-playground/internal/application/usecase/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type AuthHandler struct {
	loginUseCase *auth.LoginUseCase
	logger       logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase: loginUC,
		logger:       log,
	}
}

// loginRequest binds from an OAuth2 password form or a JSON body.
type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.NewInvalidInput("username and password are required", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if apperror.IsUnauthorized(err) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, output)
}
