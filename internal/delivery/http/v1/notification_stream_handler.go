package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/metrics"
	"go-jobboard-backend/internal/notifycenter"
	"go-jobboard-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamAuthTimeout  = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamPongWait     = 70 * time.Second
	streamWriteWait    = 10 * time.Second
	streamOutBuffer    = 64
)

// Frame types sent to stream clients
const (
	frameSnapshot     = "snapshot"
	frameNotification = "notification"
	frameNavigation   = "navigation"
	frameDeleted      = "deleted"
	frameError        = "error"
)

// streamCommand is one client frame. Fields beyond Type depend on the command.
type streamCommand struct {
	Type   string               `json:"type"`
	Token  string               `json:"token,omitempty"`
	ID     string               `json:"id,omitempty"`
	IDs    []string             `json:"ids,omitempty"`
	Filter *notifycenter.Filter `json:"filter,omitempty"`
}

type streamFrame struct {
	Type    string      `json:"type"`
	Command string      `json:"command,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type NotificationStreamHandler struct {
	authUC         domain.AuthUsecase
	notificationUC domain.NotificationUsecase
	limit          int
	upgrader       websocket.Upgrader
}

func NewNotificationStreamHandler(r *gin.RouterGroup, authUC domain.AuthUsecase, notificationUC domain.NotificationUsecase, limit int, checkOrigin func(*http.Request) bool) {
	handler := &NotificationStreamHandler{
		authUC:         authUC,
		notificationUC: notificationUC,
		limit:          limit,
		upgrader:       websocket.Upgrader{CheckOrigin: checkOrigin},
	}
	r.GET("/notifications/stream", handler.Stream)
}

// streamConn serializes writes; gorilla allows one concurrent writer.
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *streamConn) write(frame streamFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return s.conn.WriteJSON(frame)
}

func (s *streamConn) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
}

func (s *streamConn) close(code int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(streamWriteWait))
}

// Stream godoc
// @Summary      Live notification center
// @Description  WebSocket. The first frame must be {"type":"auth","token":"..."} unless an auth_token cookie is sent. Commands: filter, open, mark_all_read, delete, delete_selected, refresh.
// @Tags         notifications
// @Router       /notifications/stream [get]
func (h *NotificationStreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sc := &streamConn{conn: conn}
	log := logger.Log.With(slog.String("client_ip", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	identity, err := h.authenticate(ctx, conn, middleware.BearerToken(c))
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		sc.close(websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	log = log.With(slog.String("user_id", identity.UserID))
	ctx = context.WithValue(ctx, domain.KeyUserID, identity.UserID)

	metrics.StreamConnections.Inc()
	defer metrics.StreamConnections.Dec()

	center := notifycenter.New(identity.UserID, h.notificationUC, h.limit)
	defer center.Close()

	// Pushes are queued so the subscription goroutine never blocks on the socket
	out := make(chan streamFrame, streamOutBuffer)
	listener := func(change notifycenter.Change) {
		metrics.StreamPushes.WithLabelValues(string(change.Kind)).Inc()
		select {
		case out <- streamFrame{Type: frameNotification, Data: change}:
		default:
			log.Warn("stream client too slow, dropping push", slog.String("notification_id", change.Notification.ID))
		}
	}

	if err := center.Attach(ctx, listener); err != nil {
		// Without live updates the list is still usable; refresh catches up
		log.Warn("notification subscription failed", slog.Any("error", err))
	}
	if err := sc.write(streamFrame{Type: frameSnapshot, Data: center.Load(ctx)}); err != nil {
		return
	}

	go h.writeLoop(ctx, cancel, sc, center, out)
	h.readLoop(ctx, cancel, sc, center, log)
	log.Info("notification stream closed")
}

// authenticate uses the cookie/header token when present, otherwise waits for
// the first frame to carry one.
func (h *NotificationStreamHandler) authenticate(ctx context.Context, conn *websocket.Conn, token string) (*domain.Identity, error) {
	if token == "" {
		_ = conn.SetReadDeadline(time.Now().Add(streamAuthTimeout))
		var msg streamCommand
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("read auth frame: %w", err)
		}
		if msg.Type != "auth" || msg.Token == "" {
			return nil, errors.New("auth required")
		}
		token = msg.Token
	}
	return h.authUC.Authenticate(ctx, token)
}

func (h *NotificationStreamHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, sc *streamConn, center *notifycenter.Center, out <-chan streamFrame) {
	defer cancel()
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-out:
			if err := sc.write(frame); err != nil {
				return
			}
			if err := sc.write(streamFrame{Type: frameSnapshot, Data: center.View()}); err != nil {
				return
			}
		case <-ticker.C:
			if err := sc.ping(); err != nil {
				return
			}
		}
	}
}

func (h *NotificationStreamHandler) readLoop(ctx context.Context, cancel context.CancelFunc, sc *streamConn, center *notifycenter.Center, log *slog.Logger) {
	defer cancel()
	conn := sc.conn
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		var cmd streamCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("stream read ended", slog.Any("error", err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))

		frames := h.execute(ctx, center, cmd)
		for _, f := range frames {
			if err := sc.write(f); err != nil {
				return
			}
		}
	}
}

// execute runs one client command against the center and returns the frames
// to send back. A failed command reports an error frame and a fresh snapshot.
func (h *NotificationStreamHandler) execute(ctx context.Context, center *notifycenter.Center, cmd streamCommand) []streamFrame {
	fail := func(err error) []streamFrame {
		return []streamFrame{
			{Type: frameError, Command: cmd.Type, Message: messageOf(err)},
			{Type: frameSnapshot, Data: center.View()},
		}
	}

	switch cmd.Type {
	case "filter":
		var f notifycenter.Filter
		if cmd.Filter != nil {
			f = *cmd.Filter
		}
		snap, err := center.SetFilter(f)
		if err != nil {
			return fail(err)
		}
		return []streamFrame{{Type: frameSnapshot, Data: snap}}

	case "open":
		nav, err := center.Open(ctx, cmd.ID)
		if err != nil {
			return fail(err)
		}
		return []streamFrame{
			{Type: frameNavigation, Data: nav},
			{Type: frameSnapshot, Data: center.View()},
		}

	case "mark_all_read":
		if err := center.MarkAllRead(ctx); err != nil {
			return fail(err)
		}
		return []streamFrame{{Type: frameSnapshot, Data: center.View()}}

	case "delete":
		if err := center.Delete(ctx, cmd.ID); err != nil {
			return fail(err)
		}
		return []streamFrame{{Type: frameSnapshot, Data: center.View()}}

	case "delete_selected":
		removed, err := center.DeleteSelected(ctx, cmd.IDs)
		if err != nil {
			return fail(err)
		}
		return []streamFrame{
			{Type: frameDeleted, Data: gin.H{"count": removed}},
			{Type: frameSnapshot, Data: center.View()},
		}

	case "refresh":
		return []streamFrame{{Type: frameSnapshot, Data: center.Load(ctx)}}

	default:
		return []streamFrame{{Type: frameError, Command: cmd.Type, Message: "unknown command"}}
	}
}
