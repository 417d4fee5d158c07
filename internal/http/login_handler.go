package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gita-guru/internal/domain"
	"gita-guru/internal/service"
)

// LoginHandler sirve la pagina de login con sus dos pestañas.
type LoginHandler struct {
	logger     *zap.Logger
	authServ   *service.AuthService
	sessions   *SessionManager
	portalPath string
}

func NewLoginHandler(logger *zap.Logger, authServ *service.AuthService, sessions *SessionManager, portalPath string) *LoginHandler {
	if portalPath == "" {
		portalPath = "/portal"
	}
	return &LoginHandler{
		logger:     logger,
		authServ:   authServ,
		sessions:   sessions,
		portalPath: portalPath,
	}
}

type loginPage struct {
	ActiveTab domain.Tab
	Notices   []service.Notice
	Name      string
	Email     string
}

type signInForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type signUpForm struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

// Index maneja GET /.
func (h *LoginHandler) Index(c *gin.Context) {
	if sess := currentSession(c); sess != nil && sess.Authenticated() {
		c.Redirect(http.StatusSeeOther, h.portalPath)
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// Show maneja GET /login; ?tab= cambia la pestaña activa.
func (h *LoginHandler) Show(c *gin.Context) {
	sess := currentSession(c)
	if sess.Authenticated() {
		c.Redirect(http.StatusSeeOther, h.portalPath)
		return
	}
	if tab, ok := c.GetQuery("tab"); ok {
		if next := domain.ParseTab(tab); next != sess.ActiveTab {
			sess.ActiveTab = next
			_ = h.sessions.Save(c)
		}
	}
	h.render(c, http.StatusOK, loginPage{ActiveTab: sess.ActiveTab})
}

// SignIn maneja POST /login/signin.
func (h *LoginHandler) SignIn(c *gin.Context) {
	sess := currentSession(c)
	sess.ActiveTab = domain.TabSignIn

	var form signInForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid sign in form", zap.Error(err))
	}

	prior := sess.AccessToken
	res, err := h.authServ.SignIn(c.Request.Context(), service.SignInInput{
		Email:            form.Email,
		Password:         form.Password,
		PriorAccessToken: prior,
	})
	if err != nil {
		h.logger.Info("sign in failed", zap.Error(err))
		if priorSignedOut(err) {
			sess.User = nil
			sess.AccessToken = ""
		}
		_ = h.sessions.Save(c)
		h.render(c, authStatus(err), loginPage{
			ActiveTab: domain.TabSignIn,
			Notices:   service.SignInFeedback(err),
		})
		return
	}

	h.establish(c, res, service.MsgWelcomeBack)
}

// SignUp maneja POST /login/signup.
func (h *LoginHandler) SignUp(c *gin.Context) {
	sess := currentSession(c)
	sess.ActiveTab = domain.TabSignUp

	var form signUpForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid sign up form", zap.Error(err))
	}

	res, err := h.authServ.SignUp(c.Request.Context(), service.SignUpInput{
		Name:            form.Name,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		h.logger.Info("sign up failed", zap.Error(err))
		_ = h.sessions.Save(c)
		h.render(c, authStatus(err), loginPage{
			ActiveTab: domain.TabSignUp,
			Notices:   service.SignUpFeedback(err),
			Name:      form.Name,
			Email:     form.Email,
		})
		return
	}

	h.establish(c, res, service.MsgAccountCreated)
}

// priorSignedOut indica si SignIn llego a cerrar la sesion remota previa:
// solo la validacion y el rate limit cortan antes.
func priorSignedOut(err error) bool {
	var verr *service.ValidationError
	return !errors.As(err, &verr) && !errors.Is(err, service.ErrRateLimited)
}

// establish guarda la identidad en la sesion con un ID nuevo y redirige al portal.
func (h *LoginHandler) establish(c *gin.Context, res service.AuthResult, flash string) {
	sess := currentSession(c)
	if err := h.sessions.Rotate(c); err != nil {
		h.logger.Error("rotate session failed", zap.Error(err))
	}
	identity := res.Identity
	sess.User = &identity
	sess.AccessToken = res.AccessToken
	sess.Flash = flash
	if err := h.sessions.Save(c); err != nil {
		h.render(c, http.StatusInternalServerError, loginPage{
			ActiveTab: sess.ActiveTab,
			Notices:   []service.Notice{{Level: service.NoticeError, Text: "Could not store session"}},
		})
		return
	}
	c.Redirect(http.StatusSeeOther, h.portalPath)
}

func (h *LoginHandler) render(c *gin.Context, status int, page loginPage) {
	c.HTML(status, "login.html", page)
}
