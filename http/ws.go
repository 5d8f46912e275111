package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsMessage is the reply to one websocket submission.
type wsMessage struct {
	Type   string     `json:"type"`
	Result *apiResult `json:"result,omitempty"`
	Error  *apiError  `json:"error,omitempty"`
}

// session is one browser tab's websocket. Submissions are handled one at a
// time in arrival order; the next message is not read until the reply for
// the previous one is queued.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *zap.Logger
}

// handleWebSocket 处理WebSocket连接
func (h *Handlers) handleWebSocket(maxMessage int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		s := &session{
			id:     uuid.NewString(),
			conn:   conn,
			send:   make(chan []byte, 8),
			done:   make(chan struct{}),
			logger: h.logger,
		}
		h.metrics.Sessions.Inc()
		defer h.metrics.Sessions.Dec()
		h.logger.Debug("websocket session opened", zap.String("session_id", s.id))

		go s.writePump()
		s.readPump(h, maxMessage)
	}
}

// readPump WebSocket读取泵
func (s *session) readPump(h *Handlers, maxMessage int64) {
	defer func() {
		close(s.send)
		s.logger.Debug("websocket session closed", zap.String("session_id", s.id))
	}()

	s.conn.SetReadLimit(maxMessage)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply := wsMessage{Type: "result"}
		prediction, err := h.submit(data)
		if err != nil {
			status, payload := describeError(err)
			if status == http.StatusInternalServerError {
				s.logger.Error("prediction failed", zap.String("session_id", s.id), zap.Error(err))
			}
			reply = wsMessage{Type: "error", Error: &payload}
		} else {
			result := newAPIResult(prediction)
			reply.Result = &result
		}

		encoded, err := json.Marshal(reply)
		if err != nil {
			s.logger.Error("encode websocket reply", zap.Error(err))
			return
		}
		select {
		case s.send <- encoded:
		case <-s.done:
			return
		}
	}
}

// writePump WebSocket写入泵
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write error", zap.String("session_id", s.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
