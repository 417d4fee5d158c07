package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gita-guru/internal/service"
)

// APIHandler expone los mismos flujos de login en JSON.
type APIHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
}

func NewAPIHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService) *APIHandler {
	return &APIHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
	}
}

// SignIn maneja POST /api/auth/signin.
func (h *APIHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.authServ.SignIn(c.Request.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(c, err, service.SignInFeedback(err))
		return
	}
	h.writeAuthResult(c, http.StatusOK, res)
}

// SignUp maneja POST /api/auth/signup.
func (h *APIHandler) SignUp(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign up request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.authServ.SignUp(c.Request.Context(), service.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeAuthError(c, err, service.SignUpFeedback(err))
		return
	}
	h.writeAuthResult(c, http.StatusCreated, res)
}

// Me maneja GET /api/me; requiere BearerAuth.
func (h *APIHandler) Me(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

func (h *APIHandler) writeAuthResult(c *gin.Context, status int, res service.AuthResult) {
	if !h.jwtServ.Enabled() {
		h.logger.Error("jwt secret not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token issuing disabled"})
		return
	}
	token, err := h.jwtServ.Issue(res.Identity)
	if err != nil {
		h.logger.Error("issue access token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(status, gin.H{
		"user":         res.Identity,
		"access_token": token.Token,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
	})
}

func (h *APIHandler) writeAuthError(c *gin.Context, err error, notices []service.Notice) {
	status := authStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api auth failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": notices[0].Text, "messages": notices})
}
