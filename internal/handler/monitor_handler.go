package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/service"
	ws "github.com/campusworks/examportal-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams attempt events of a running exam to its examiner
// over WebSocket, fed by the Redis monitor channel.
type MonitorHandler struct {
	store       *service.RedisStore
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

func NewMonitorHandler(store *service.RedisStore, examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		store:       store,
		examService: examService,
		log:         log.With().Str("component", "monitor_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// WS /ws/v1/exams/:id/monitor
func (h *MonitorHandler) ExamMonitor(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// Ownership check before the upgrade, so unauthorized callers get a
	// plain HTTP error.
	if _, err := h.examService.Get(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c)); err != nil {
		failFromErr(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	monLog := h.log.With().Str("exam_id", examID.String()).Logger()
	monLog.Info().Msg("monitor connected")

	sub := h.store.SubscribeMonitor(c.Request.Context(), examID)
	defer sub.Close()

	if err := ws.WriteTyped(conn, ws.Envelope{Event: ws.EventMonitorHello, Payload: gin.H{"exam_id": examID}}); err != nil {
		return
	}

	// Drain client frames so pings and closes are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			monLog.Debug().Msg("monitor disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			var ev model.MonitorEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				monLog.Warn().Err(err).Msg("dropping malformed monitor event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.Envelope{Event: ws.EventAttempt, Payload: ev}); err != nil {
				monLog.Debug().Err(err).Msg("monitor write failed")
				return
			}
		}
	}
}
