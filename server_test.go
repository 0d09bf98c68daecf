package renderbridge

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/device/stub"
	"github.com/lumenforge/renderbridge/wire"
)

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	s := New(Config{Listener: "127.0.0.1:0", Library: stub.NewLibrary(nil)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening in time")
		}
		time.Sleep(time.Millisecond)
	}

	return s.Addr().String(), func() {
		cancel()
		<-done
	}
}

// TestServeAcceptsConnectionAndRoundTripsNewDevice dials the server, sends
// a NEW_DEVICE frame, and checks a DEVICE_HANDLE frame comes back — the
// full accept → read → dispatch → write path, end to end.
func TestServeAcceptsConnectionAndRoundTripsNewDevice(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter()
	w.WriteString("test-device")
	compress.WriteFeatures(w, compress.FeatureJPEG)
	if err := wire.WriteFrame(conn, wire.NewDevice, w.Bytes()); err != nil {
		t.Fatalf("write NEW_DEVICE: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := wire.ReadFrame(conn)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Opcode != wire.DeviceHandle {
		t.Fatalf("reply opcode = %v, want DeviceHandle", reply.Opcode)
	}

	r := wire.NewReader(reply.Payload)
	id, err := r.ReadU64()
	if err != nil || id != 1 {
		t.Fatalf("device id = %d, err=%v, want 1", id, err)
	}
}

// TestServeToleratesUnknownOpcode checks that a malformed/unknown opcode
// doesn't kill the connection — the client can keep talking afterward.
func TestServeToleratesUnknownOpcode(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := wire.WriteFrame(conn, wire.Opcode(9999), nil); err != nil {
		t.Fatalf("write unknown opcode: %v", err)
	}

	w := wire.NewWriter()
	w.WriteString("test-device")
	compress.WriteFeatures(w, 0)
	if err := wire.WriteFrame(conn, wire.NewDevice, w.Bytes()); err != nil {
		t.Fatalf("write NEW_DEVICE: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := wire.ReadFrame(conn)
	if err != nil {
		t.Fatalf("connection should survive the unknown opcode: %v", err)
	}
	if reply.Opcode != wire.DeviceHandle {
		t.Fatalf("reply opcode = %v, want DeviceHandle", reply.Opcode)
	}
}

// TestStopUnblocksServe checks that cancelling the context makes Serve
// return instead of blocking forever.
func TestStopUnblocksServe(t *testing.T) {
	_, stop := startTestServer(t)
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop/Serve did not unblock in time")
	}
}
