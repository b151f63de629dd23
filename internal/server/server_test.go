package server

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tailsv/internal/event"
	"tailsv/internal/record"
	"tailsv/internal/tail"
)

func dialEvents(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var received Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return received
}

func TestServerStreamsBusEvents(t *testing.T) {
	bus := event.NewBus[Event](event.Options{})
	defer bus.Close()
	srv := New("127.0.0.1:0", bus, nil)

	httpServer := httptest.NewServer(srv.Handler())
	defer httpServer.Close()

	conn := dialEvents(t, httpServer.URL)

	// Give the handler a moment to subscribe before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	sink := NewBusSink(bus)
	sink.OnHeader([]string{"id", "name"})
	row := record.NewRow([]string{"1", "Ann"}).WithHeader([]string{"id", "name"})
	sink.OnRecord(row)
	sink.OnInfo(tail.Info{Kind: tail.InfoShrink, Size: 40})
	sink.OnError(errors.New("boom"))

	header := readEvent(t, conn)
	if header.Type != "header" || len(header.Header) != 2 {
		t.Fatalf("header event = %+v", header)
	}
	recordEvent := readEvent(t, conn)
	if recordEvent.Type != "record" {
		t.Fatalf("record event = %+v", recordEvent)
	}
	info := readEvent(t, conn)
	if info.Type != "info" || info.Info != string(tail.InfoShrink) || info.Size != 40 {
		t.Fatalf("info event = %+v", info)
	}
	errEvent := readEvent(t, conn)
	if errEvent.Type != "error" || errEvent.Error != "boom" {
		t.Fatalf("error event = %+v", errEvent)
	}
}

func TestServerReleasesSubscriptionOnDisconnect(t *testing.T) {
	bus := event.NewBus[Event](event.Options{})
	defer bus.Close()
	srv := New("127.0.0.1:0", bus, nil)

	httpServer := httptest.NewServer(srv.Handler())
	defer httpServer.Close()

	conn := dialEvents(t, httpServer.URL)

	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if bus.SubscriberCount() != 1 {
		t.Fatalf("subscribers = %d, want 1", bus.SubscriberCount())
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for bus.SubscriberCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if bus.SubscriberCount() != 0 {
		t.Fatal("subscription not released after disconnect")
	}
}
