package httpapi

import (
	"errors"
	"net/http"
	"time"

	"hanzify/internal/model"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	maxFrameBytes = 64 << 10
	writeWait     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handleStream converts one {"pinyin"} text frame at a time and answers each
// with a StreamResponse. Frames on a connection are handled in order.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxFrameBytes)
	// Frames may arrive long after the server's read timeout.
	_ = conn.SetReadDeadline(time.Time{})

	requestID := requestIDFromContext(r.Context())
	s.logger.Debug("websocket connected", "request_id", requestID)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, websocket.ErrCloseSent) {
				s.logger.Debug("websocket read ended", "request_id", requestID, "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply := s.convertFrame(r, payload)
		data, err := sonic.Marshal(reply)
		if err != nil {
			s.logger.Error("encode websocket reply", "request_id", requestID, "error", err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("websocket write failed", "request_id", requestID, "error", err)
			return
		}
	}
}

func (s *server) convertFrame(r *http.Request, payload []byte) model.StreamResponse {
	var req model.StreamRequest
	if err := sonic.Unmarshal(payload, &req); err != nil {
		return model.StreamResponse{
			Code:    "invalid_request",
			Message: "invalid JSON frame",
			Context: s.converter.Context(),
		}
	}

	res := s.converter.Convert(r.Context(), req.Pinyin)
	if !res.OK {
		return model.StreamResponse{
			Code:    res.Kind.String(),
			Message: res.Message,
			Context: s.converter.Context(),
		}
	}
	return model.StreamResponse{OK: true, Result: res.Output, Context: res.Context}
}
