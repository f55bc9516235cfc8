package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/engine"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(log.NewWithOptions(io.Discard, log.Options{}))
}

var testUpgrader = websocket.Upgrader{}

func dialHub(t *testing.T, hub *Hub, roomID string) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Subscribe(roomID, conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestHub_Publish_DeliversEnvelopeToSubscriber(t *testing.T) {
	hub := newTestHub()
	conn, cleanup := dialHub(t, hub, "room-1")
	defer cleanup()

	time.Sleep(10 * time.Millisecond) // let Subscribe register before Publish

	hub.Publish("room-1", engine.PlayerPassedEvent{SeatIndex: 2})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "player_passed", env.Kind)
}

func TestHub_Publish_DoesNotDeliverToOtherRooms(t *testing.T) {
	hub := newTestHub()
	conn, cleanup := dialHub(t, hub, "room-1")
	defer cleanup()

	time.Sleep(10 * time.Millisecond)

	hub.Publish("room-2", engine.PlayerPassedEvent{SeatIndex: 2})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "a subscriber of room-1 must not receive room-2's events")
}

func TestHub_Unsubscribe_StopsFurtherDelivery(t *testing.T) {
	hub := newTestHub()
	conn, cleanup := dialHub(t, hub, "room-1")
	defer cleanup()

	time.Sleep(10 * time.Millisecond)

	hub.mu.Lock()
	var sub *subscriber
	for s := range hub.subscribers["room-1"] {
		sub = s
	}
	hub.mu.Unlock()
	require.NotNil(t, sub)

	hub.Unsubscribe("room-1", sub)
	hub.Publish("room-1", engine.PlayerPassedEvent{SeatIndex: 0})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestEventPayload_CardsPlayedEventRendersWireCards(t *testing.T) {
	event := engine.CardsPlayedEvent{
		SeatIndex: 1,
		Cards:     []bigtwo.Card{bigtwo.ThreeOfDiamonds},
		ComboKind: bigtwo.Single,
	}
	payload, err := eventPayload(event)
	require.NoError(t, err)

	m, ok := payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, 1, m["seat_index"])
	cards, ok := m["cards"].([]cardWire)
	require.True(t, ok)
	require.Len(t, cards, 1)
	require.Equal(t, "3", cards[0].Rank)
}

func TestEventPayload_GameOverEventRendersFinalScores(t *testing.T) {
	event := engine.GameOverEvent{FinalWinnerIndex: 2, FinalScores: map[int]int{0: 110, 1: 90, 2: 0}}
	payload, err := eventPayload(event)
	require.NoError(t, err)

	m, ok := payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, 2, m["final_winner_index"])
	scores, ok := m["final_scores"].(map[string]int)
	require.True(t, ok)
	require.Equal(t, 110, scores["0"])
}
