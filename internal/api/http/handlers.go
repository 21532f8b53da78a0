package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/browser"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/pipeline"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
)

const version = "0.3.0"

// Handlers contains all control API handlers
type Handlers struct {
	client  *browser.Client
	started time.Time
}

// NewHandlers creates a new handler set over client
func NewHandlers(client *browser.Client) *Handlers {
	return &Handlers{client: client, started: time.Now()}
}

// LoadRequest is the body of POST /v1/load
type LoadRequest struct {
	URL      string            `json:"url" binding:"required"`
	Target   string            `json:"target"`
	Window   string            `json:"window"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers"`
	Body     string            `json:"body"`
	Text     bool              `json:"text"`
	Download bool              `json:"download"`
}

// LoadResponse describes the page a load produced and its window
type LoadResponse struct {
	Window *browser.WindowSummary `json:"window,omitempty"`
	Page   browser.PageSummary    `json:"page"`
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webcore",
		"version": version,
		"profile": h.client.Profile().Name,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"windows":           len(h.client.Windows().Windows()),
		"active_jobs":       h.client.Windows().ActiveJobCount(),
		"pending_downloads": h.client.Pipeline().PendingDownloads(),
		"cache": gin.H{
			"size":     h.client.Cache().Size(),
			"capacity": h.client.Cache().Capacity(),
		},
		"open_breakers":  h.client.Transport().Breakers().Open(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// Load loads a URL into the window its target resolves to, or queues it
// as a download
func (h *Handlers) Load(c *gin.Context) {
	var body LoadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := buildRequest(body)
	if err != nil {
		h.fail(c, err)
		return
	}

	var opener *window.Window
	if body.Window != "" {
		w, ok := h.window(c, body.Window)
		if !ok {
			return
		}
		opener = w
	}

	if body.Download {
		job, err := h.client.Pipeline().Download(c.Request.Context(), opener, body.Target, req, "control api")
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job": job.String(), "queued": job != ""})
		return
	}

	pg, err := h.client.Pipeline().Load(c.Request.Context(), opener, body.Target, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.describe(pg, body.Text))
}

// ListWindows lists every open window
func (h *Handlers) ListWindows(c *gin.Context) {
	windows := h.client.WindowSummaries()
	c.JSON(http.StatusOK, gin.H{
		"windows": windows,
		"count":   len(windows),
	})
}

// GetWindow describes one window
func (h *Handlers) GetWindow(c *gin.Context) {
	w, ok := h.window(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.client.SummarizeWindow(w))
}

// CloseWindow closes a window with its frames
func (h *Handlers) CloseWindow(c *gin.Context) {
	w, ok := h.window(c, c.Param("id"))
	if !ok {
		return
	}
	h.client.Windows().Close(w)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": w.ID().String()})
}

// Back reloads the previous history entry of a window
func (h *Handlers) Back(c *gin.Context) {
	h.traverse(c, -1)
}

// Forward reloads the next history entry of a window
func (h *Handlers) Forward(c *gin.Context) {
	h.traverse(c, 1)
}

func (h *Handlers) traverse(c *gin.Context, offset int) {
	w, ok := h.window(c, c.Param("id"))
	if !ok {
		return
	}
	pg, err := h.client.Pipeline().GoTo(c.Request.Context(), w, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.describe(pg, false))
}

// ApplyDownloads flushes the download queue into windows
func (h *Handlers) ApplyDownloads(c *gin.Context) {
	applied, err := h.client.Pipeline().ApplyDownloads(c.Request.Context())
	resp := gin.H{"applied": applied}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// ClearCache drops every cached response
func (h *Handlers) ClearCache(c *gin.Context) {
	h.client.Cache().Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MetricsJSON returns the metrics snapshot
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.Metrics().Snapshot())
}

func (h *Handlers) describe(pg window.Page, withText bool) LoadResponse {
	resp := LoadResponse{Page: browser.Summarize(pg, withText)}
	if owner, ok := pg.(interface{ Window() *window.Window }); ok && owner.Window() != nil {
		s := h.client.SummarizeWindow(owner.Window())
		resp.Window = &s
	}
	return resp
}

// window looks up a window id, writing the error response when it fails
func (h *Handlers) window(c *gin.Context, raw string) (*window.Window, bool) {
	if !id.Valid(raw, id.WindowPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return nil, false
	}
	w, ok := h.client.Windows().Get(id.WindowID(raw))
	if !ok || w.IsClosed() {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return nil, false
	}
	return w, true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.client.Logger().Warn("control request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func buildRequest(body LoadRequest) (*web.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(body.Method))
	if method == "" {
		method = http.MethodGet
	}
	req, err := web.NewRequest(body.URL, method)
	if err != nil {
		return nil, err
	}
	for name, value := range body.Headers {
		req.SetHeader(name, value)
	}
	if body.Body != "" {
		if err := req.SetBody(body.Body); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, web.ErrMalformedRequest),
		errors.Is(err, web.ErrBodyNotAllowed),
		errors.Is(err, web.ErrBodyConflict):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoHistoryEntry):
		return http.StatusConflict
	case errors.Is(err, web.ErrTooManyRedirects):
		return http.StatusLoopDetected
	case errors.Is(err, web.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
