package frame

import (
	"testing"

	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/device/stub"
	"github.com/lumenforge/renderbridge/wire"
)

// TestStreamRawPathOnCompressionMismatch reproduces spec scenario 4: client
// advertises no JPEG support, server advertises JPEG; the color channel
// (8-bit sRGB RGBA) must go out uncompressed.
func TestStreamRawPathOnCompressionMismatch(t *testing.T) {
	dev := stub.NewDevice()
	devHandle := device.Handle(0xA001)
	frameHandle := dev.NewObject(devHandle, 1, wire.TypeFrame, "")
	dev.RenderFrame(devHandle, frameHandle)

	negotiated := compress.Negotiate(0, compress.ServerFeatures())

	msgs := Stream(dev, devHandle, frameHandle, 42, negotiated, compress.JPEGEncoder{}, compress.SnappyEncoder{})
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2 (color + depth)", len(msgs))
	}

	color := msgs[0]
	if color.Opcode != wire.ChannelColor {
		t.Fatalf("msgs[0].Opcode = %v, want ChannelColor", color.Opcode)
	}
	r := wire.NewReader(color.Payload)
	frameID, _ := r.ReadU64()
	width, _ := r.ReadU32()
	height, _ := r.ReadU32()
	elementType, _ := r.ReadDataType()
	if frameID != 42 || elementType != wire.TypeUFixed8RGBASRGB {
		t.Fatalf("frameID=%d elementType=%v", frameID, elementType)
	}
	wantRawSize := int(width) * int(height) * 4
	if r.Remaining() != wantRawSize {
		t.Errorf("remaining payload = %d, want raw size %d (no compressed_size prefix)", r.Remaining(), wantRawSize)
	}
}

// TestStreamCompressedPathWhenBothAdvertise reproduces spec scenario 5:
// both sides advertise JPEG and SNAPPY; both channels compress and carry a
// compressed_size prefix.
func TestStreamCompressedPathWhenBothAdvertise(t *testing.T) {
	dev := stub.NewDevice()
	devHandle := device.Handle(0xA001)
	frameHandle := dev.NewObject(devHandle, 1, wire.TypeFrame, "")
	dev.RenderFrame(devHandle, frameHandle)

	negotiated := compress.Negotiate(compress.FeatureJPEG|compress.FeatureSnappy, compress.ServerFeatures())

	msgs := Stream(dev, devHandle, frameHandle, 7, negotiated, compress.JPEGEncoder{}, compress.SnappyEncoder{})
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}

	for _, msg := range msgs {
		r := wire.NewReader(msg.Payload)
		r.ReadU64() // frame id
		width, _ := r.ReadU32()
		height, _ := r.ReadU32()
		elementType, _ := r.ReadDataType()
		compressedSize, err := r.ReadU32()
		if err != nil {
			t.Fatalf("opcode %v: missing compressed_size prefix: %v", msg.Opcode, err)
		}
		rawSize := int(width) * int(height) * elementType.SizeOf()
		if int(compressedSize) >= rawSize*4 {
			t.Errorf("opcode %v: compressed_size %d implausibly large for raw size %d", msg.Opcode, compressedSize, rawSize)
		}
		if r.Remaining() != int(compressedSize) {
			t.Errorf("opcode %v: remaining %d != declared compressed_size %d", msg.Opcode, r.Remaining(), compressedSize)
		}
	}
}

// TestStreamNeverReordersChannels checks the invariant that color always
// precedes depth in the returned slice, regardless of map order.
func TestStreamNeverReordersChannels(t *testing.T) {
	dev := stub.NewDevice()
	devHandle := device.Handle(0xA001)
	frameHandle := dev.NewObject(devHandle, 1, wire.TypeFrame, "")
	dev.RenderFrame(devHandle, frameHandle)

	msgs := Stream(dev, devHandle, frameHandle, 1, 0, compress.JPEGEncoder{}, compress.SnappyEncoder{})
	if len(msgs) != 2 || msgs[0].Opcode != wire.ChannelColor || msgs[1].Opcode != wire.ChannelDepth {
		t.Fatalf("msgs = %+v, want [ChannelColor, ChannelDepth]", msgs)
	}
}

// TestStreamSkipsUnavailableChannel checks that an unrendered frame (no
// RenderFrame call, so MapFrameChannel reports TypeUnknown) produces zero
// messages rather than erroring.
func TestStreamSkipsUnavailableChannel(t *testing.T) {
	dev := stub.NewDevice()
	devHandle := device.Handle(0xA001)
	frameHandle := dev.NewObject(devHandle, 1, wire.TypeFrame, "")

	msgs := Stream(dev, devHandle, frameHandle, 1, 0, compress.JPEGEncoder{}, compress.SnappyEncoder{})
	if len(msgs) != 0 {
		t.Fatalf("len(msgs) = %d, want 0 for an unrendered frame", len(msgs))
	}
}
