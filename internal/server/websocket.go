package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSRequest is a client message on /ws. Commands holds the command payload,
// either as JSON or as a string containing the raw model output.
type WSRequest struct {
	ID         string          `json:"id,omitempty"`
	Commands   json.RawMessage `json:"commands"`
	SkipErrors *bool           `json:"skipErrors,omitempty"`
	Silent     *bool           `json:"silent,omitempty"`
}

// WSResponse is a server message on /ws.
type WSResponse struct {
	Type   string                 `json:"type"` // "report" | "event" | "error"
	ID     string                 `json:"id,omitempty"`
	Report *types.ExecutionReport `json:"report,omitempty"`
	Event  *StreamEvent           `json:"event,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// rawPayload extracts the text handed to the parser.
func (req WSRequest) rawPayload() string {
	res := gjson.ParseBytes(req.Commands)
	if res.Type == gjson.String {
		return res.Str
	}
	return string(req.Commands)
}

// wsConn serializes writes to a websocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// serveWS handles GET /ws. Each client message runs one batch and is
// answered with its report; bus events are forwarded as they happen.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}
	ctx := r.Context()

	events, unsub := s.subscribe("ws")
	defer unsub()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case e := <-events:
				if err := ws.send(WSResponse{Type: "event", Event: &StreamEvent{Type: e.Type, Properties: e.Data}}); err != nil {
					return
				}
			case <-ticker.C:
				if err := ws.ping(); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var req WSRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Msg("websocket read failed")
			}
			if isDecodeError(err) && ws.send(WSResponse{Type: "error", Error: "invalid JSON message"}) == nil {
				continue
			}
			return
		}
		if len(req.Commands) == 0 {
			if err := ws.send(WSResponse{Type: "error", ID: req.ID, Error: "commands is required"}); err != nil {
				return
			}
			continue
		}

		opts := s.defaultOptions()
		if req.SkipErrors != nil {
			opts.SkipErrors = *req.SkipErrors
		}
		if req.Silent != nil {
			opts.Silent = *req.Silent
		}

		report := s.service.Run(ctx, req.rawPayload(), opts)
		if err := ws.send(WSResponse{Type: "report", ID: req.ID, Report: report}); err != nil {
			return
		}
	}
}

// isDecodeError reports whether err came from decoding a complete message,
// in which case the connection is still usable.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
