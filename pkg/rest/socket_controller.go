package rest

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okanmail/okan/pkg/extension/event"
	"github.com/okanmail/okan/pkg/metric"
	"github.com/okanmail/okan/pkg/msghub"
	"github.com/okanmail/okan/pkg/rest/model"
	"github.com/okanmail/okan/pkg/server/web"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Events queued per client before the client is dropped.
	queueSize = 100
)

var (
	errQueueFull      = errors.New("monitor queue full")
	errListenerClosed = errors.New("monitor listener closed")
)

// options for gorilla connection upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// checkListener handles check results from the msghub.
type checkListener struct {
	hub         *msghub.Hub                    // Global check result hub.
	c           chan *model.JSONMonitorEventV1 // Queue of incoming events.
	done        chan struct{}                  // Closed by Close, or when the queue overflows.
	doneOnce    sync.Once
	closeOnce   sync.Once
	blockedOnly bool // Only forward checks that blocked sending.
}

// newCheckListener creates a listener and registers it.  When blockedOnly is set, only checks
// that blocked sending are forwarded to the WebSocket.
func newCheckListener(hub *msghub.Hub, blockedOnly bool) *checkListener {
	cl := &checkListener{
		hub:         hub,
		c:           make(chan *model.JSONMonitorEventV1, queueSize),
		done:        make(chan struct{}),
		blockedOnly: blockedOnly,
	}
	hub.AddListener(cl)
	return cl
}

// Receive handles a completed check.
func (cl *checkListener) Receive(res event.CheckResult) error {
	if cl.blockedOnly && !res.CannotSend {
		return nil
	}

	// Enqueue for websocket.
	return cl.enqueue(&model.JSONMonitorEventV1{
		Variant: "check-completed",
		Check:   resultToJSON(&res),
	})
}

// Delete handles a deleted audit record.
func (cl *checkListener) Delete(id string) error {
	return cl.enqueue(&model.JSONMonitorEventV1{
		Variant: "record-deleted",
		ID:      id,
	})
}

// enqueue never blocks the hub; a client that stops reading is dropped.
func (cl *checkListener) enqueue(ev *model.JSONMonitorEventV1) error {
	select {
	case <-cl.done:
		return errListenerClosed
	default:
	}
	select {
	case cl.c <- ev:
		return nil
	default:
		// Called from the hub goroutine, which drops this listener on error; only end the socket.
		cl.finish()
		return errQueueFull
	}
}

// finish closes done, which ends WSWriter and the connection.
func (cl *checkListener) finish() {
	cl.doneOnce.Do(func() {
		close(cl.done)
	})
}

// WSReader makes sure the websocket client is still connected, discards any messages from client
func (cl *checkListener) WSReader(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Logger()
	defer cl.Close()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn().Err(err).Msg("Failed to setup read deadline")
	}
	conn.SetPongHandler(func(string) error {
		slog.Debug().Msg("Got pong")
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			slog.Warn().Err(err).Msg("Failed to set read deadline in pong")
		}
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				// Unexpected close code
				slog.Warn().Err(err).Msg("Socket error")
			} else {
				slog.Debug().Msg("Closing socket")
			}
			break
		}
	}
}

// WSWriter makes sure the websocket client is still connected
func (cl *checkListener) WSWriter(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Logger()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.Close()
	}()

	// Handle events from hub until checkListener is closed
	for {
		select {
		case <-cl.done:
			// checkListener closed, exit
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			_ = conn.Close()
			return
		case ev := <-cl.c:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for event")
			}
			if conn.WriteJSON(ev) != nil {
				// Write failed
				return
			}
		case <-ticker.C:
			// Send ping
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for ping")
			}
			if conn.WriteMessage(websocket.PingMessage, []byte{}) != nil {
				// Write error
				return
			}
			slog.Debug().Msg("Sent ping")
		}
	}
}

// Close removes the listener registration.  It is safe to call more than once.
func (cl *checkListener) Close() {
	cl.closeOnce.Do(func() {
		cl.hub.RemoveListener(cl)
	})
	cl.finish()
}

// MonitorChecksV1 is a web handler which upgrades the connection to a websocket and notifies the
// client of completed checks and deleted records.  The query parameter blocked=true restricts
// checks to those that blocked sending.
func MonitorChecksV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if !ctx.RootConfig.Web.MonitorVisible || ctx.MsgHub == nil {
		http.NotFound(w, req)
		return nil
	}
	blockedOnly := req.URL.Query().Get("blocked") == "true"

	// Upgrade to Websocket.
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	metric.MonitorClients.Inc()
	defer func() {
		_ = conn.Close()
		metric.MonitorClients.Dec()
	}()
	log.Debug().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Msg("Upgraded to WebSocket")
	// Create, register listener; then interact with conn.
	cl := newCheckListener(ctx.MsgHub, blockedOnly)
	go cl.WSWriter(conn)
	cl.WSReader(conn)
	return nil
}

func resultToJSON(res *event.CheckResult) *model.JSONCheckEventV1 {
	return &model.JSONCheckEventV1{
		ID:                res.RecordID,
		Date:              res.Date,
		PosixMillis:       res.Date.UnixNano() / int64(time.Millisecond),
		Sender:            res.Sender,
		Subject:           res.Subject,
		To:                res.To,
		Cc:                res.Cc,
		Bcc:               res.Bcc,
		Alerts:            res.Alerts,
		CannotSend:        res.CannotSend,
		Reason:            res.Reason,
		NeedsConfirmation: res.NeedsConfirmation,
	}
}
