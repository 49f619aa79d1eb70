package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// SocketMessage is the frame pushed to job websocket clients.
type SocketMessage struct {
	Type    string `json:"type"` // "completion" or "error"
	Payload any    `json:"payload"`
}

// handleJobSocket upgrades the connection, waits for the job to finish and
// pushes its completion as a single frame before closing.
func (s *Server) handleJobSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.jobs.Get(id); err != nil {
		s.fail(w, r, err, "")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading processes control frames and notices when the client leaves.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	c, err := s.jobs.Wait(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("websocket client left before job finished", "id", id)
			return
		}
		s.writeSocket(conn, SocketMessage{
			Type:    "error",
			Payload: ErrorResponse{Error: err.Error()},
		})
		return
	}

	s.writeSocket(conn, SocketMessage{Type: "completion", Payload: newJobResponse(c)})
}

func (s *Server) writeSocket(conn *websocket.Conn, msg SocketMessage) {
	deadline := time.Now().Add(socketWriteTimeout)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}
