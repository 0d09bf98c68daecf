// Command renderbridge-monitor is a debug client: it dials a running
// renderbridge-server, drives one FRAME object through repeated
// RENDER_FRAME calls, decodes the CHANNEL_COLOR replies, and displays them
// live. It exists only to make the bridge's frame streaming observable
// from outside a real rendering client.
package main

import (
	"fmt"
	"image"
	"log"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/viewer"
	"github.com/lumenforge/renderbridge/wire"
)

var (
	flagAddr   string
	flagWidth  uint32
	flagHeight uint32
	flagFPS    float64
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renderbridge-monitor",
		Short: "Drive a render bridge session and display its decoded frames",
		RunE:  runMonitor,
	}

	flags := cmd.Flags()
	flags.StringVarP(&flagAddr, "addr", "a", fmt.Sprintf("127.0.0.1:%d", wire.DefaultPort), "render bridge address to dial")
	flags.Uint32VarP(&flagWidth, "width", "w", 512, "frame width to request")
	flags.Uint32Var(&flagHeight, "height", 512, "frame height to request")
	flags.Float64Var(&flagFPS, "fps", 2, "frames to render per second")

	return cmd
}

func runMonitor(cmd *cobra.Command, args []string) error {
	viewer.RunWithFrameSource("renderbridge-monitor", int(flagWidth), int(flagHeight), func(v *viewer.FramebufferViewer) {
		v.Start()
		if err := driveSession(v); err != nil {
			log.Printf("renderbridge-monitor: session ended: %v", err)
		}
		v.Close()
	})
	return nil
}

// driveSession owns the wire protocol conversation: it never touches the
// dispatch or device packages directly, exactly as a real rendering client
// wouldn't — this is an external consumer of the same protocol the bridge
// serves, nothing more.
func driveSession(v *viewer.FramebufferViewer) error {
	conn, err := net.DialTimeout("tcp", flagAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", flagAddr, err)
	}
	defer conn.Close()

	w := wire.NewWriter()
	w.WriteString("renderbridge-monitor")
	compress.WriteFeatures(w, compress.FeatureJPEG|compress.FeatureSnappy)
	if err := wire.WriteFrame(conn, wire.NewDevice, w.Bytes()); err != nil {
		return fmt.Errorf("write NEW_DEVICE: %w", err)
	}

	reply, err := wire.ReadFrame(conn)
	if err != nil {
		return fmt.Errorf("read DEVICE_HANDLE: %w", err)
	}
	if reply.Opcode != wire.DeviceHandle {
		return fmt.Errorf("expected DEVICE_HANDLE, got %v", reply.Opcode)
	}
	r := wire.NewReader(reply.Payload)
	deviceID, err := r.ReadU64()
	if err != nil {
		return fmt.Errorf("decode DEVICE_HANDLE: %w", err)
	}
	serverFeatureBits, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("decode DEVICE_HANDLE: %w", err)
	}
	negotiated := compress.Negotiate(compress.FeatureJPEG|compress.FeatureSnappy, compress.Features(serverFeatureBits))

	const frameObjectID = 1
	w = wire.NewWriter()
	w.WriteU64(deviceID)
	w.WriteDataType(wire.TypeFrame)
	w.WriteString("")
	w.WriteU64(frameObjectID)
	if err := wire.WriteFrame(conn, wire.NewObject, w.Bytes()); err != nil {
		return fmt.Errorf("write NEW_OBJECT: %w", err)
	}

	jpeg := compress.JPEGEncoder{}
	snappy := compress.SnappyEncoder{}

	tick := time.NewTicker(time.Duration(float64(time.Second) / flagFPS))
	defer tick.Stop()

	for range tick.C {
		w = wire.NewWriter()
		w.WriteU64(deviceID)
		w.WriteU64(frameObjectID)
		if err := wire.WriteFrame(conn, wire.RenderFrame, w.Bytes()); err != nil {
			return fmt.Errorf("write RENDER_FRAME: %w", err)
		}

		if err := readFrameChannels(conn, v, negotiated, jpeg, snappy); err != nil {
			return err
		}
	}
	return nil
}

// readFrameChannels reads the zero, one, or two CHANNEL_* replies a single
// RENDER_FRAME produces, and feeds any decoded color channel into the
// viewer. It has no way to know in advance how many replies are coming, so
// it reads with a short deadline and stops once a read times out, trusting
// the connection stays open for the next tick.
func readFrameChannels(conn net.Conn, v *viewer.FramebufferViewer, negotiated compress.Features, jpeg compress.JPEGEncoder, snappy compress.SnappyEncoder) error {
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	defer conn.SetReadDeadline(time.Time{})

	for {
		f, err := wire.ReadFrame(conn)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return fmt.Errorf("read channel frame: %w", err)
		}

		switch f.Opcode {
		case wire.ChannelColor:
			img, err := decodeColorChannel(f.Payload, negotiated, jpeg)
			if err != nil {
				log.Printf("renderbridge-monitor: decode color channel: %v", err)
				continue
			}
			v.UpdateFramebuffer(img)
		case wire.ChannelDepth:
			// Depth has no visual representation in this viewer; only the
			// color channel is displayed.
		default:
			log.Printf("renderbridge-monitor: unexpected opcode while reading channels: %v", f.Opcode)
		}
	}
}

// decodeColorChannel parses one CHANNEL_COLOR payload, matching
// frame/streamer.go's encode shape exactly: a fixed header, then either a
// <u32 compressed_size>-prefixed JPEG stream (iff color compression was
// negotiated and the channel's element type matches) or the raw sRGB RGBA
// bytes with no length prefix at all.
func decodeColorChannel(payload []byte, negotiated compress.Features, jpeg compress.JPEGEncoder) (image.Image, error) {
	r := wire.NewReader(payload)
	if _, err := r.ReadU64(); err != nil { // frame id, unused by the viewer
		return nil, err
	}
	width, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	height, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	elementType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}

	useCodec := negotiated.HasJPEG() && elementType == wire.TypeUFixed8RGBASRGB
	if useCodec {
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		compressed, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		rgba, w, h, err := jpeg.Decode(compressed)
		if err != nil {
			return nil, err
		}
		return &image.RGBA{Pix: rgba, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
	}

	raw, err := r.ReadBytes(int(width) * int(height) * elementType.SizeOf())
	if err != nil {
		return nil, err
	}
	return &image.RGBA{Pix: raw, Stride: int(width) * 4, Rect: image.Rect(0, 0, int(width), int(height))}, nil
}
