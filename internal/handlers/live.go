package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

const (
	livePingInterval = 30 * time.Second
	liveWriteTimeout = 10 * time.Second
	// the client must answer a ping before the next one is due
	liveReadTimeout = livePingInterval + liveWriteTimeout
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer; mobile clients send no Origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveComments handles GET /posts/{postId}/comments/live. It upgrades to a
// websocket and forwards every new comment on the post until either side
// closes.
func (h *Handler) LiveComments(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !h.svc.Live.Enabled() {
		respondError(w, r, services.ErrUnavailable)
		return
	}
	if err := h.svc.Comments.RequirePost(r.Context(), me.ID, postID); err != nil {
		respondError(w, r, err)
		return
	}

	// the subscription must outlive the handshake but not the connection
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	events, err := h.svc.Live.Subscribe(ctx, postID.Hex())
	if err != nil {
		respondError(w, r, err)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()
	log := logging.Ctx(r.Context()).With().Str("post_id", postID.Hex()).Str("user_id", me.ID.Hex()).Logger()
	log.Debug().Msg("live comments connected")

	// Reader: only control frames are expected; any read error ends the session.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(liveReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(liveReadTimeout))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("live comments disconnected")
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		}
	}
}
