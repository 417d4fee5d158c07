package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gita-guru/internal/domain"
	"gita-guru/internal/service"
)

// PortalHandler sirve el portal del usuario autenticado.
type PortalHandler struct {
	logger     *zap.Logger
	authServ   *service.AuthService
	recordings *service.RecordingService
	sessions   *SessionManager
	portalPath string
}

func NewPortalHandler(logger *zap.Logger, authServ *service.AuthService, recordings *service.RecordingService, sessions *SessionManager, portalPath string) *PortalHandler {
	if portalPath == "" {
		portalPath = "/portal"
	}
	return &PortalHandler{
		logger:     logger,
		authServ:   authServ,
		recordings: recordings,
		sessions:   sessions,
		portalPath: portalPath,
	}
}

func (h *PortalHandler) uploadPath() string {
	return h.portalPath + "/recordings"
}

type portalPage struct {
	User       domain.Identity
	Notices    []service.Notice
	UploadPath string
	Recording  *domain.Recording
}

// RequireSession redirige a /login si la sesion no tiene identidad.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil || !sess.Authenticated() {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Show maneja GET /portal.
func (h *PortalHandler) Show(c *gin.Context) {
	sess := currentSession(c)
	page := portalPage{User: *sess.User, UploadPath: h.uploadPath()}
	if sess.Flash != "" {
		page.Notices = append(page.Notices, service.Notice{Level: service.NoticeSuccess, Text: sess.Flash})
		sess.Flash = ""
		_ = h.sessions.Save(c)
	}
	c.HTML(http.StatusOK, "portal.html", page)
}

// UploadRecording maneja POST /portal/recordings.
func (h *PortalHandler) UploadRecording(c *gin.Context) {
	sess := currentSession(c)
	page := portalPage{User: *sess.User, UploadPath: h.uploadPath()}

	const maxBody = service.MaxRecordingSize + 1<<20
	if c.Request.ContentLength > maxBody {
		h.renderError(c, page, http.StatusRequestEntityTooLarge, "Recordings are limited to 10 MB")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	fh, err := c.FormFile("audio")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.renderError(c, page, http.StatusRequestEntityTooLarge, "Recordings are limited to 10 MB")
			return
		}
		h.renderError(c, page, http.StatusBadRequest, "Please choose an audio file to upload")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.renderError(c, page, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxRecordingSize+1))
	if err != nil {
		h.renderError(c, page, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}

	rec, err := h.recordings.Save(c.Request.Context(), sess.User.ID, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordingEmpty):
			h.renderError(c, page, http.StatusBadRequest, "The uploaded file is empty")
		case errors.Is(err, service.ErrRecordingTooLarge):
			h.renderError(c, page, http.StatusRequestEntityTooLarge, "Recordings are limited to 10 MB")
		case errors.Is(err, service.ErrUnsupportedAudio):
			h.renderError(c, page, http.StatusUnsupportedMediaType, "Unsupported audio format")
		default:
			h.logger.Error("save recording failed", zap.Error(err))
			h.renderError(c, page, http.StatusBadGateway, "Upload failed: "+err.Error())
		}
		return
	}

	page.Recording = &rec
	page.Notices = []service.Notice{{Level: service.NoticeSuccess, Text: "Recording saved"}}
	c.HTML(http.StatusCreated, "portal.html", page)
}

// Logout maneja POST /logout.
func (h *PortalHandler) Logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil && sess.AccessToken != "" {
		h.authServ.SignOut(c.Request.Context(), sess.AccessToken)
	}
	h.sessions.Destroy(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *PortalHandler) renderError(c *gin.Context, page portalPage, status int, msg string) {
	page.Notices = append(page.Notices, service.Notice{Level: service.NoticeError, Text: msg})
	c.HTML(status, "portal.html", page)
}
