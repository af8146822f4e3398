package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
	ws "github.com/medocupa/access-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams session events to a signed-in client and answers access
// checks over the same connection. The identity is reloaded from the session
// record before every answer, so a refresh or a replaced session is seen
// without reconnecting.
type WSHandler struct {
	sessions   *service.SessionService
	notifier   *service.Notifier
	authorizer *service.Authorizer
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, notifier *service.Notifier, authorizer *service.Authorizer, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions:   sessions,
		notifier:   notifier,
		authorizer: authorizer,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// wsSession ties one connection to the token it was opened with.
type wsSession struct {
	token    string
	sessions *service.SessionService
	conn     *ws.Conn
	cancel   context.CancelFunc
	log      zerolog.Logger
}

// current reloads the identity behind the token. A session that was ended or
// replaced closes the connection and yields nil.
func (s *wsSession) current(ctx context.Context) *model.Identity {
	identity, err := s.sessions.CurrentIdentity(ctx, s.token)
	if err == nil {
		return identity
	}
	if errors.Is(err, service.ErrNoSession) {
		s.log.Info().Msg("Session no longer valid, closing")
		s.cancel()
		s.conn.CloseWith(websocket.ClosePolicyViolation, "session ended")
		return nil
	}
	if ctx.Err() == nil {
		s.log.Error().Err(err).Msg("Session reload failed")
		_ = s.conn.WriteError("session unavailable")
	}
	return nil
}

// Events godoc
// WS /ws/v1/events?token=...
// Forwards the identity's session events. A sign-out elsewhere closes the
// connection; a permission change is followed by the refreshed menu.
func (h *WSHandler) Events(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	token := middleware.GetToken(c)
	if identity == nil || token == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsLog := h.log.With().Str("user_id", identity.ID).Logger()
	session := &wsSession{token: token, sessions: h.sessions, conn: conn, cancel: cancel, log: wsLog}

	sub := h.notifier.Subscribe(ctx, identity.ID)
	defer sub.Close()
	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		_ = conn.WriteError("event stream unavailable")
		return
	}

	wsLog.Info().Msg("Client connected")
	go h.forward(ctx, conn, sub.Channel(), session, wsLog)

	_ = conn.WriteTyped(ws.MenuResponse{Event: ws.EventMenu, Items: h.authorizer.VisibleMenu(ctx, identity)})

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.ClosePolicyViolation) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionMenu:
			current := session.current(ctx)
			if current == nil {
				continue
			}
			_ = conn.WriteTyped(ws.MenuResponse{Event: ws.EventMenu, Items: h.authorizer.VisibleMenu(ctx, current)})
		case ws.ActionCheck:
			current := session.current(ctx)
			if current == nil {
				continue
			}
			level := model.ParseLevel(msg.Level)
			_ = conn.WriteTyped(ws.AccessResponse{
				Event:    ws.EventAccess,
				Resource: msg.Resource,
				Level:    level.String(),
				Allowed:  h.authorizer.HasAccess(ctx, current, msg.Resource, level),
			})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// forward relays published events until ctx ends or the session ends.
func (h *WSHandler) forward(
	ctx context.Context,
	conn *ws.Conn,
	events <-chan *redis.Message,
	session *wsSession,
	wsLog zerolog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}

			var event model.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed session event")
				continue
			}
			_ = conn.WriteTyped(ws.SessionResponse{Event: ws.EventSession, Payload: event})

			switch event.Type {
			case model.EventSignedOut:
				session.cancel()
				conn.CloseWith(websocket.ClosePolicyViolation, "signed out")
				return
			case model.EventSignedIn:
				// A new sign-in replaces the session this socket was opened with.
				if session.current(ctx) == nil && ctx.Err() != nil {
					return
				}
			case model.EventPermissionsChanged:
				current := session.current(ctx)
				if current == nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				_ = conn.WriteTyped(ws.MenuResponse{Event: ws.EventMenu, Items: h.authorizer.VisibleMenu(ctx, current)})
			}
		}
	}
}
