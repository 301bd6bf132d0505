package server

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/songwd/calassist/internal/logging"
	"github.com/songwd/calassist/internal/tools"
)

const (
	// DefaultReadHeaderTimeout bounds slow-header clients.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultChatTimeout bounds one chat turn end to end, including the
	// model round trips and the Cal.com calls they trigger.
	DefaultChatTimeout = 2 * time.Minute
)

// emailPattern matches an email address inside free-form chat text. An
// email in the message usually names the attendee for a booking.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// extractEmail returns the first email address found in message, or ""
// when there is none.
func extractEmail(message string) string {
	return emailPattern.FindString(message)
}

// ChatRequest is the POST /api/chat request body. SessionID is optional;
// omitting it starts a new conversation.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the POST /api/chat response body. Clients echo
// SessionID back to continue the conversation.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// WebServer serves the chat API.
type WebServer struct {
	app        *AppContext
	sessions   *SessionManager
	health     *HealthChecker
	engine     *gin.Engine
	httpServer *http.Server
}

// NewWebServer creates the web server and its routes.
func NewWebServer(app *AppContext) *WebServer {
	gin.SetMode(gin.ReleaseMode)

	ws := &WebServer{
		app:      app,
		sessions: NewSessionManager(app.Metrics(), app.Logger()),
	}
	ws.health = NewHealthChecker(app, ws.sessions)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ws.requestLogger())

	engine.POST("/api/chat", ws.handleChat)
	engine.GET("/healthz", gin.WrapH(ws.health.LivenessHandler()))
	engine.GET("/readyz", gin.WrapH(ws.health.ReadinessHandler()))
	engine.GET("/healthz/detailed", gin.WrapH(ws.health.DetailedHealthHandler()))

	ws.engine = engine
	return ws
}

// Engine exposes the router. Used by tests.
func (ws *WebServer) Engine() *gin.Engine {
	return ws.engine
}

// Sessions exposes the session manager.
func (ws *WebServer) Sessions() *SessionManager {
	return ws.sessions
}

// Start serves HTTP on the configured address, blocking until the server
// stops. Call in a goroutine for non-blocking operation.
func (ws *WebServer) Start() error {
	ws.httpServer = &http.Server{
		Addr:              ws.app.Config().HTTPAddr,
		Handler:           ws.engine,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	ws.app.Logger().Info("starting web server", slog.String("addr", ws.httpServer.Addr))
	return ws.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the session cleanup.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.health.SetReady(false)
	ws.sessions.Stop()
	if ws.httpServer != nil {
		ws.app.Logger().Info("shutting down web server")
		return ws.httpServer.Shutdown(ctx)
	}
	return nil
}

func (ws *WebServer) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	id, sess := ws.sessions.Acquire(c.Request.Context(), req.SessionID)

	if email := extractEmail(req.Message); email != "" {
		ws.app.Logger().Info("attendee email detected",
			logging.Session(id),
			logging.UserHash(email),
			logging.Domain(email))
	}

	// One turn at a time per session. Concurrent requests for the same
	// session queue here instead of interleaving histories.
	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultChatTimeout)
	defer cancel()
	ctx = tools.WithSession(ctx, id)

	reply := ws.app.Agent().Respond(ctx, sess.history, req.Message)
	sess.history.AddExchange(req.Message, reply)

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: id,
		Reply:     reply,
	})
}

// requestLogger logs each request and records HTTP metrics.
func (ws *WebServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		ws.app.Metrics().RecordHTTPRequest(c.Request.Context(), c.Request.Method, path, status, duration)
		ws.app.Logger().Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			logging.Duration(duration))
	}
}
