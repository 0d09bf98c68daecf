// Package frame implements the per-channel frame streaming pipeline: for
// each declared output channel of a rendered frame, map it, decide whether
// to compress it, and build the reply message. Channels are driven from one
// small channel-spec table rather than copy-pasted per channel, so adding a
// third channel is a one-line change.
package frame

import (
	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/wire"
)

// channelSpec names one frame channel and which codec class, if any, may
// compress it.
type channelSpec struct {
	name    string
	opcode  wire.Opcode
	codec   compress.Features // which feature bit enables compression for this channel
	allowed wire.DataType     // element type the codec actually supports
}

var channels = []channelSpec{
	{name: device.ChannelColor, opcode: wire.ChannelColor, codec: compress.FeatureJPEG, allowed: wire.TypeUFixed8RGBASRGB},
	{name: device.ChannelDepth, opcode: wire.ChannelDepth, codec: compress.FeatureSnappy, allowed: wire.TypeFloat32},
}

// Message is one encoded channel reply, ready to be framed onto the wire by
// the caller (wire.WriteFrame(w, msg.Opcode, msg.Payload)).
type Message struct {
	Opcode  wire.Opcode
	Payload []byte
}

// Stream runs the frame streamer for frameHandle against dev, negotiated
// against the given compression features. It returns zero, one, or two
// messages — one per channel that was actually produced this frame — never
// reordered relative to the channel table above.
func Stream(dev device.RenderDevice, deviceHandle, frameHandle device.Handle, frameID uint64, negotiated compress.Features, jpeg compress.JPEGEncoder, snappy compress.SnappyEncoder) []Message {
	var out []Message
	for _, ch := range channels {
		data, width, height, elementType := dev.MapFrameChannel(deviceHandle, frameHandle, ch.name)
		if elementType == wire.TypeUnknown || data == nil {
			continue
		}

		byteSize := int(width) * int(height) * elementType.SizeOf()
		useCodec := negotiated&ch.codec != 0 && elementType == ch.allowed

		w := wire.NewWriter()
		w.WriteU64(frameID)
		w.WriteU32(width)
		w.WriteU32(height)
		w.WriteDataType(elementType)

		if useCodec {
			compressed, err := encodeChannel(ch, width, height, data, jpeg, snappy)
			if err == nil {
				w.WriteU32(uint32(len(compressed)))
				w.WriteBytes(compressed)
				out = append(out, Message{Opcode: ch.opcode, Payload: w.Bytes()})
				continue
			}
			// Encoding failure falls through to the raw path below rather
			// than dropping the channel outright.
		}

		raw := data
		if len(raw) > byteSize {
			raw = raw[:byteSize]
		}
		w.WriteBytes(raw)
		out = append(out, Message{Opcode: ch.opcode, Payload: w.Bytes()})
	}
	return out
}

func encodeChannel(ch channelSpec, width, height uint32, data []byte, jpeg compress.JPEGEncoder, snappy compress.SnappyEncoder) ([]byte, error) {
	switch ch.codec {
	case compress.FeatureJPEG:
		return jpeg.Encode(int(width), int(height), data)
	case compress.FeatureSnappy:
		return snappy.Encode(data), nil
	default:
		return data, nil
	}
}
