package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"marketBack/internal/handlers"
	"marketBack/internal/models"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	directBuffer  = 256
)

var pingInterval = 15 * time.Second

type directMsg struct {
	userID       int
	notification models.Notification
}

type client struct {
	userID int
	conn   *websocket.Conn
}

// NotificationHub keeps one socket per user and pushes notifications to it.
// All access to the client map happens inside Run.
type NotificationHub struct {
	clients    map[int]*websocket.Conn
	direct     chan directMsg
	register   chan client
	unregister chan client
	closed     chan struct{}
	infoLog    *log.Logger
}

func NewNotificationHub(infoLog *log.Logger) *NotificationHub {
	return &NotificationHub{
		clients:    make(map[int]*websocket.Conn),
		direct:     make(chan directMsg, directBuffer),
		register:   make(chan client),
		unregister: make(chan client),
		closed:     make(chan struct{}),
		infoLog:    infoLog,
	}
}

func (h *NotificationHub) Run(ctx context.Context) {
	defer close(h.closed)
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.clients {
				_ = writeClose(conn, websocket.CloseGoingAway, "server shutdown")
				_ = conn.Close()
				delete(h.clients, id)
			}
			return

		case c := <-h.register:
			if old, ok := h.clients[c.userID]; ok && old != c.conn {
				_ = old.Close()
			}
			h.clients[c.userID] = c.conn
			h.infoLog.Printf("WS register user=%d", c.userID)

		case c := <-h.unregister:
			if cur, ok := h.clients[c.userID]; ok && cur == c.conn {
				_ = cur.Close()
				delete(h.clients, c.userID)
				h.infoLog.Printf("WS unregister user=%d", c.userID)
			}

		case dm := <-h.direct:
			conn, ok := h.clients[dm.userID]
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(dm.notification); err != nil {
				h.infoLog.Printf("WS send error to=%d: %v", dm.userID, err)
				_ = conn.Close()
				delete(h.clients, dm.userID)
			}
		}
	}
}

// SendToUser queues a notification for the user's socket. It drops the
// message when the hub is saturated; the stored notification remains.
func (h *NotificationHub) SendToUser(userID int, n models.Notification) {
	select {
	case h.direct <- directMsg{userID: userID, notification: n}:
	default:
		h.infoLog.Printf("WS queue full, dropping notification %d for user=%d", n.ID, userID)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// NotificationSocket upgrades an authenticated request and registers the
// connection for the caller.
func (app *application) NotificationSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(handlers.ContextUserID).(int)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	c := client{userID: userID, conn: conn}
	select {
	case app.hub.register <- c:
	case <-app.hub.closed:
		_ = conn.Close()
		return
	}

	done := make(chan struct{})
	go pingLoop(c, pingInterval, done)
	go readLoop(app.hub, c, done)
}

func pingLoop(c client, interval time.Duration, done <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := ping(c.conn); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames; it exists to process control frames and
// notice disconnects.
func readLoop(h *NotificationHub, c client, done chan<- struct{}) {
	defer func() {
		close(done)
		select {
		case h.unregister <- c:
		case <-h.closed:
		}
	}()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// ping uses WriteControl, which may run alongside the hub's WriteJSON.
func ping(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
