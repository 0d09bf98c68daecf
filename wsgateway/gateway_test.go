package wsgateway

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoListener starts a TCP listener that echoes every byte it receives
// back to the same connection, standing in for the render bridge's own
// TCP listener in these splice tests.
func echoListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 4096)
				for {
					n, err := conn.Read(buf)
					if err != nil {
						return
					}
					if _, err := conn.Write(buf[:n]); err != nil {
						return
					}
				}
			}()
		}
	}()
	return ln
}

// TestUpgradeSplicesBytesBothWays drives a WebSocket client through the
// gateway's handler against an echo TCP target, and checks a binary
// message sent by the client comes back unchanged.
func TestUpgradeSplicesBytesBothWays(t *testing.T) {
	target := echoListener(t)
	defer target.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", handleUpgrade(func() (net.Conn, error) {
		return net.Dial("tcp", target.Addr().String())
	}))
	httpServer := httptest.NewServer(mux)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/bridge"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{httpServer.URL}})
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer ws.Close()

	payload := []byte{1, 2, 3, 4, 5}
	if err := ws.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("echoed payload = %v, want %v", got, payload)
	}
}

// TestUpgradeRejectsMissingOrigin checks the gateway's upgrader enforces
// an Origin header on every upgrade request.
func TestUpgradeRejectsMissingOrigin(t *testing.T) {
	target := echoListener(t)
	defer target.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", handleUpgrade(func() (net.Conn, error) {
		return net.Dial("tcp", target.Addr().String())
	}))
	httpServer := httptest.NewServer(mux)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/bridge"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail without an Origin header")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("status = %d, want 403", status)
	}
}
