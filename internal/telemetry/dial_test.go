package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"governor-xrpl-lab/internal/domain"
)

func newWSFeeNode(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var req struct {
				ID uint64 `json:"id"`
			}
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}
			c.WriteJSON(map[string]interface{}{
				"id":     req.ID,
				"type":   "response",
				"status": "success",
				"result": map[string]interface{}{
					"ledger_current_index": int64(500),
					"drops": map[string]interface{}{
						"base_fee":        "10",
						"median_fee":      "400",
						"minimum_fee":     "10",
						"open_ledger_fee": "10",
					},
					"levels": map[string]interface{}{
						"median_level":      "10240",
						"minimum_level":     "256",
						"open_ledger_level": "256",
						"reference_level":   "256",
					},
				},
			})
		}
	}))
}

func TestDial_WebSocketFirst(t *testing.T) {
	node := newWSFeeNode(t)
	defer node.Close()

	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("rpc node should not be queried while the websocket node answers")
		http.Error(w, "unexpected", http.StatusInternalServerError)
	}))
	defer rpc.Close()

	src, closeNodes := Dial(context.Background(), DialConfig{
		WSEndpoints:  []string{"ws" + strings.TrimPrefix(node.URL, "http"), "ws://127.0.0.1:1/"},
		RPCEndpoints: []string{rpc.URL},
		Timeout:      2 * time.Second,
		RateLimit:    50,
		RateBurst:    5,
	}, nil)
	defer closeNodes()

	status := src.EndpointStatus()
	if len(status) != 2 {
		t.Fatalf("expected the unreachable websocket node to be skipped, got %+v", status)
	}
	if status[0].Transport != domain.SnapshotSourceWS || status[1].Transport != domain.SnapshotSourceRPC {
		t.Errorf("unexpected transports: %+v", status)
	}

	snap := src.FetchSnapshot(context.Background())
	if snap.Source != domain.SnapshotSourceWS {
		t.Errorf("expected websocket snapshot, got %s", snap.Source)
	}
	if snap.LedgerSeq != 500 || snap.MedianFee != 400 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestDial_NoEndpoints(t *testing.T) {
	src, closeNodes := Dial(context.Background(), DialConfig{}, nil)
	defer closeNodes()

	if len(src.EndpointStatus()) != 0 {
		t.Error("expected no nodes")
	}
	if snap := src.FetchSnapshot(context.Background()); snap.Source != domain.SnapshotSourceFallback {
		t.Errorf("expected fallback, got %s", snap.Source)
	}
}
