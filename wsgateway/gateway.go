// Package wsgateway lets a browser-hosted viewer reach the rendering
// bridge without a native TCP socket: it upgrades an incoming HTTP
// connection to a WebSocket and splices its binary messages to a freshly
// dialed TCP connection to the bridge, byte-for-byte, in both directions.
// The wire protocol doesn't care which transport carried its frames, so
// nothing here decodes or re-encodes a single message — this is pure
// splice.
package wsgateway

import (
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return r.Header.Get("Origin") != ""
	},
}

// Serve starts an HTTP server on addr that upgrades every request at
// "/bridge" to a WebSocket and splices it to a new connection returned by
// dial, one pair of goroutines per client.
func Serve(addr string, dial func() (net.Conn, error)) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", handleUpgrade(dial))

	server := &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Printf("wsgateway: listening on %s, bridging /bridge to the render bridge", addr)
	return server.ListenAndServe()
}

func handleUpgrade(dial func() (net.Conn, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("wsgateway: failed to upgrade to WS: %s", err)
			return
		}

		conn, err := dial()
		if err != nil {
			log.Printf("wsgateway: failed to dial bridge target: %s", err)
			ws.Close()
			return
		}

		go forwardToWS(ws, conn)
		go forwardToTCP(ws, conn)
	}
}

// forwardToWS copies frames from the TCP bridge connection to the
// WebSocket as binary messages.
func forwardToWS(ws *websocket.Conn, conn net.Conn) {
	var buf [4096]byte
	defer func() {
		conn.Close()
		ws.Close()
	}()
	for {
		n, err := conn.Read(buf[0:])
		if err != nil {
			log.Printf("wsgateway: reading from bridge failed: %s", err)
			return
		}
		if err := ws.WriteMessage(websocket.BinaryMessage, buf[0:n]); err != nil {
			log.Printf("wsgateway: writing to WS failed: %s", err)
			return
		}
	}
}

// forwardToTCP copies binary WebSocket messages to the TCP bridge
// connection.
func forwardToTCP(ws *websocket.Conn, conn net.Conn) {
	defer func() {
		conn.Close()
		ws.Close()
	}()
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			log.Printf("wsgateway: reading from WS failed: %s", err)
			return
		}
		if _, err := conn.Write(message); err != nil {
			log.Printf("wsgateway: writing to bridge failed: %s", err)
			return
		}
	}
}
