package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// RealtimeHandler streams changefeed events to websocket clients.
type RealtimeHandler struct {
	broker   realtime.Broker
	metrics  *metrics.Registry
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(broker realtime.Broker, m *metrics.Registry, allowedOrigins []string) *RealtimeHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &RealtimeHandler{
		broker:  broker,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

type feedClient struct {
	conn      *websocket.Conn
	requestID string
}

// HandleOperatorsFeed godoc
// @Summary      Stream operator changes
// @Description  Upgrades to a websocket and sends one JSON change per message (INSERT, UPDATE or DELETE on operators). Browsers pass the token as the token query parameter.
// @Tags         realtime
// @Param        token  query  string  false  "JWT when the Authorization header cannot be set"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  response.Err
// @Router       /realtime/operators [get]
// @Security     BearerAuth
func (h *RealtimeHandler) HandleOperatorsFeed(ctx *gin.Context) {
	// The subscription outlives the handler, which returns once the pumps run.
	feedCtx, cancel := context.WithCancel(context.Background())

	changes, err := h.broker.Subscribe(feedCtx)
	if err != nil {
		cancel()
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		cancel()
		zap.L().Warn("websocket upgrade failed", zap.Error(err), zap.String("request_id", requestid.Get(ctx)))
		return
	}

	client := &feedClient{conn: conn, requestID: requestid.Get(ctx)}
	if h.metrics != nil {
		h.metrics.RealtimeClients.Inc()
	}

	go client.writePump(feedCtx, changes, func() {
		cancel()
		if h.metrics != nil {
			h.metrics.RealtimeClients.Dec()
		}
	})
	go client.readPump(cancel)
}

// writePump is the only writer of the connection. A client that cannot take
// a message within writeWait is dropped.
func (c *feedClient) writePump(ctx context.Context, changes <-chan realtime.Change, done func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		done()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case change, ok := <-changes:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(change); err != nil {
				zap.L().Debug("dropping realtime client", zap.Error(err), zap.String("request_id", c.requestID))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and watches for the connection to go
// away.
func (c *feedClient) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				zap.L().Warn("realtime client read error", zap.Error(err), zap.String("request_id", c.requestID))
			}
			return
		}
	}
}
