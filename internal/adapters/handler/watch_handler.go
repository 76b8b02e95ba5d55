package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
	"github.com/aladdin-hotel/operations-sync-service/internal/hub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	subscriptionBuffer = 64
)

// WatchHandler upgrades clients to a websocket and streams change events.
// A client sends one subscribe frame per subscription; each new subscribe
// replaces the previous one and is answered with a fresh snapshot followed
// by the live stream. Origin checks are left to the CORS layer in front.
type WatchHandler struct {
	h        *hub.Hub
	store    ports.Store
	upgrader websocket.Upgrader
}

func NewWatchHandler(h *hub.Hub, store ports.Store) *WatchHandler {
	return &WatchHandler{
		h:     h,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (wh *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	conn, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watch: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The write pump owns the connection for writes; events and pings
	// must not interleave mid-frame.
	events := make(chan ports.ChangeEvent, subscriptionBuffer)
	stop := make(chan struct{})
	defer close(stop)
	go wh.writePump(conn, events, stop)

	var current *hub.Subscription
	defer func() {
		if current != nil {
			wh.h.Unsubscribe(current)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("watch: read error: %v", err)
			}
			return
		}

		msg, ok := hub.ParseSubscribe(data)
		if !ok {
			continue
		}

		if current != nil {
			wh.h.Unsubscribe(current)
		}

		// Register before snapshotting so no commit between the two is
		// missed; the subscription's version gate drops duplicates.
		sub := wh.h.Subscribe(hub.Filter{
			Collection: msg.Collection,
			Field:      msg.Field,
			Value:      msg.Value,
		}, subscriptionBuffer)
		current = sub

		snapshot, err := wh.store.Snapshot(r.Context(), msg.Collection)
		if err != nil {
			log.Printf("watch: snapshot %s failed: %v", msg.Collection, err)
			wh.h.Unsubscribe(sub)
			current = nil
			continue
		}
		wh.h.Seed(sub, snapshot)

		go forwardEvents(sub, events, stop)
	}
}

// forwardEvents drains one subscription into the connection's shared event
// channel. It exits when the subscription is closed or the socket is torn
// down.
func forwardEvents(sub *hub.Subscription, events chan<- ports.ChangeEvent, stop <-chan struct{}) {
	for evt := range sub.C() {
		select {
		case events <- evt:
		case <-stop:
			return
		}
	}
}

func (wh *WatchHandler) writePump(conn *websocket.Conn, events <-chan ports.ChangeEvent, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case evt := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
