package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 4 << 10
)

// streamMessage is pushed to the client on every change.
type streamMessage struct {
	Type string `json:"type"`
	snapshotResponse
}

// filterMessage lets the client change its filter without reconnecting.
type filterMessage struct {
	Query    string `json:"q"`
	Category string `json:"category"`
}

// Stream upgrades to a websocket and pushes the filtered snapshot on connect
// and after every change of the caller's mirror.
func Stream(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     mw.CheckOrigin(d.AllowedOrigins, d.Logger),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}
		userID := mw.UserID(r.Context())
		filter := filterFrom(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.Close() }()

		log := d.Logger.With(
			logger.String("user_id", userID),
			logger.String("stream_id", uuid.NewString()))
		log.Debug("stream opened")

		changes, stop := s.Watch()
		defer stop()

		filters := make(chan domain.Filter, 1)
		gone := make(chan struct{})
		go readFilters(conn, filters, gone, log)

		send := func() bool {
			msg := streamMessage{Type: "snapshot", snapshotResponse: newSnapshotResponse(s.Snapshot(), filter)}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("stream write failed", logger.Error(err))
				return false
			}
			return true
		}

		if !send() {
			return
		}

		ping := time.NewTicker(streamPingPeriod)
		defer ping.Stop()

		for {
			select {
			case _, open := <-changes:
				if !open {
					// Session released; let the client reconnect.
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
						time.Now().Add(streamWriteWait))
					log.Debug("stream closed by session release")
					return
				}
				if !send() {
					return
				}
			case f := <-filters:
				filter = f
				if !send() {
					return
				}
			case <-ping.C:
				d.Sessions.Touch(userID)
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					log.Debug("stream ping failed", logger.Error(err))
					return
				}
			case <-gone:
				log.Debug("stream closed by client")
				return
			}
		}
	}
}

// readFilters consumes client messages until the connection fails.
func readFilters(conn *websocket.Conn, out chan domain.Filter, gone chan<- struct{}, log logger.Logger) {
	defer close(gone)

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg filterMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed stream message", logger.Error(err))
			continue
		}
		f := domain.Filter{Query: msg.Query, Category: msg.Category}
		// Keep only the latest filter.
		select {
		case <-out:
		default:
		}
		out <- f
	}
}
