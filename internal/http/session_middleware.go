package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gita-guru/internal/domain"
	"gita-guru/internal/service"
)

const (
	sessionCookieName = "gg_session"
	webSessionKey     = "web_session"
)

// SessionManager enlaza la cookie del navegador con el SessionStore.
type SessionManager struct {
	logger *zap.Logger
	store  service.SessionStore
	ttl    time.Duration
	secure bool
}

func NewSessionManager(logger *zap.Logger, store service.SessionStore, ttl time.Duration, secure bool) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		logger: logger,
		store:  store,
		ttl:    ttl,
		secure: secure,
	}
}

// Middleware carga la sesion de la cookie o crea una nueva con pestaña signin.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess domain.Session
		if id, err := c.Cookie(sessionCookieName); err == nil && id != "" {
			sess, err = m.store.Get(c.Request.Context(), id)
			if err != nil && !errors.Is(err, service.ErrSessionNotFound) {
				m.logger.Warn("load session failed", zap.Error(err))
			}
		}
		if sess.ID == "" {
			sess = domain.NewSession(uuid.NewString())
		}

		m.setCookie(c, sess.ID, int(m.ttl.Seconds()))
		c.Set(webSessionKey, &sess)
		c.Next()
	}
}

// Save persiste la sesion actual del request.
func (m *SessionManager) Save(c *gin.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return errors.New("no session in context")
	}
	if err := m.store.Save(c.Request.Context(), *sess, m.ttl); err != nil {
		m.logger.Error("save session failed", zap.Error(err))
		return err
	}
	return nil
}

// Rotate cambia el ID de la sesion actual y borra el anterior del store.
// Se llama al autenticar para que un ID emitido antes del login no sirva despues.
func (m *SessionManager) Rotate(c *gin.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return errors.New("no session in context")
	}
	if sess.ID != "" {
		if err := m.store.Delete(c.Request.Context(), sess.ID); err != nil {
			m.logger.Warn("delete rotated session failed", zap.Error(err))
		}
	}
	sess.ID = uuid.NewString()
	m.setCookie(c, sess.ID, int(m.ttl.Seconds()))
	return nil
}

// Destroy borra la sesion del store y expira la cookie.
func (m *SessionManager) Destroy(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := m.store.Delete(c.Request.Context(), sess.ID); err != nil {
			m.logger.Warn("delete session failed", zap.Error(err))
		}
	}
	m.setCookie(c, "", -1)
}

// setCookie reemplaza cualquier gg_session ya escrito en la respuesta.
func (m *SessionManager) setCookie(c *gin.Context, value string, maxAge int) {
	header := c.Writer.Header()
	if prev := header.Values("Set-Cookie"); len(prev) > 0 {
		kept := make([]string, 0, len(prev))
		for _, v := range prev {
			if !strings.HasPrefix(v, sessionCookieName+"=") {
				kept = append(kept, v)
			}
		}
		header["Set-Cookie"] = kept
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, value, maxAge, "/", "", m.secure, true)
}

func currentSession(c *gin.Context) *domain.Session {
	val, ok := c.Get(webSessionKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*domain.Session)
	return sess
}
