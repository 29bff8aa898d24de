package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"marketBack/internal/handlers"
	"marketBack/internal/models"
)

func TestNotificationSocketPingsAlongsideWrites(t *testing.T) {
	saved := pingInterval
	pingInterval = time.Millisecond
	t.Cleanup(func() { pingInterval = saved })

	discard := log.New(io.Discard, "", 0)
	hub := NewNotificationHub(discard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	app := &application{hub: hub, errorLog: discard, infoLog: discard}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(context.WithValue(r.Context(), handlers.ContextUserID, 7))
		app.NotificationSocket(w, r)
		close(registered)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var pings int32
	conn.SetPingHandler(func(data string) error {
		atomic.AddInt32(&pings, 1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("socket was not registered")
	}

	const total = 100
	for i := 1; i <= total; i++ {
		hub.SendToUser(7, models.Notification{ID: i, UserID: 7, Title: "New offer"})
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 1; i <= total; i++ {
		var n models.Notification
		if err := conn.ReadJSON(&n); err != nil {
			t.Fatalf("read notification %d: %v", i, err)
		}
		if n.ID != i || n.Title != "New offer" {
			t.Fatalf("notification %d = %+v", i, n)
		}
	}

	time.Sleep(20 * time.Millisecond)
	hub.SendToUser(7, models.Notification{ID: total + 1, UserID: 7})
	var last models.Notification
	if err := conn.ReadJSON(&last); err != nil || last.ID != total+1 {
		t.Fatalf("last notification = %+v, %v", last, err)
	}
	if atomic.LoadInt32(&pings) == 0 {
		t.Fatal("expected pings while notifications were written")
	}
}
