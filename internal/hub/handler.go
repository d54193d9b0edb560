package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/internal/types"
	"creatorhub-realtime/pkg/jwt"
	"creatorhub-realtime/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dev hub accepts any origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSConfig holds per-connection timing configuration
type WSConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// Handler handles realtime channel connection requests
type Handler struct {
	hub          *Hub
	jwtValidator *jwt.Validator
	logger       log.Logger
	wsConfig     WSConfig
}

// NewHandler creates a new channel handler
func NewHandler(hub *Hub, jwtValidator *jwt.Validator, logger log.Logger, wsConfig WSConfig) *Handler {
	return &Handler{
		hub:          hub,
		jwtValidator: jwtValidator,
		logger:       logger,
		wsConfig:     wsConfig,
	}
}

// HandleChannel upgrades a request for /realtime/:subjectKind/:subjectId
// and registers the connection under that subject.
func (h *Handler) HandleChannel(c *gin.Context) {
	subjectKind := c.Param("subjectKind")
	subjectID := c.Param("subjectId")

	if !types.IsValidSubjectKind(subjectKind) || subjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid subject binding",
		})
		return
	}

	if h.jwtValidator != nil && !h.jwtValidator.Permissive() {
		token := c.Query("token")
		if token == "" {
			h.logger.Warn(context.Background(), "channel connection rejected: missing token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing token parameter",
			})
			return
		}

		claimKind, claimID, err := h.jwtValidator.ExtractSubject(token)
		if err != nil {
			h.logger.Warnf(context.Background(), "channel connection rejected: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}
		if claimID != subjectID || (claimKind != "" && claimKind != subjectKind) {
			h.logger.Warnf(context.Background(), "channel connection rejected: token subject mismatch for %s/%s", subjectKind, subjectID)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "token does not match subject",
			})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf(context.Background(), "failed to upgrade connection: %v", err)
		return
	}

	subject := SubjectKey(subjectKind, subjectID)
	connection := NewConnection(
		h.hub,
		conn,
		subject,
		h.wsConfig.PongWait,
		h.wsConfig.PingPeriod,
		h.wsConfig.WriteWait,
		h.logger,
	)

	h.hub.register <- connection
	connection.Start()

	// Welcome event so the client surfaces the connection immediately.
	welcome := realtime.Envelope{
		Type:      string(types.EventConnected),
		Data:      map[string]any{"message": "Realtime notifications connected"},
		Timestamp: time.Now().UTC(),
	}
	if data, err := welcome.ToJSON(); err == nil {
		connection.enqueue(data)
	}

	h.logger.Infof(context.Background(), "channel connection established for subject: %s", subject)
}

// SetupRoutes sets up realtime channel routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/realtime/:subjectKind/:subjectId", h.HandleChannel)
}
