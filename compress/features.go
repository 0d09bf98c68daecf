// Package compress implements the two opaque frame-channel codecs the
// bridge negotiates: a lossy image codec for the color channel and a
// lossless byte-stream codec for depth. The two encoders have different
// Encode signatures and share no interface; frame.Stream picks between
// them by the channel's feature bit.
package compress

import "github.com/lumenforge/renderbridge/wire"

// Features is the compression capability bitmask advertised at session
// start by both the client (in NEW_DEVICE's payload) and the server (in
// DEVICE_HANDLE's reply).
type Features uint32

const (
	FeatureJPEG Features = 1 << iota
	FeatureSnappy
)

// HasJPEG reports whether f advertises the lossy image codec.
func (f Features) HasJPEG() bool { return f&FeatureJPEG != 0 }

// HasSnappy reports whether f advertises the lossless byte codec.
func (f Features) HasSnappy() bool { return f&FeatureSnappy != 0 }

// Negotiate returns the set of codecs both client and server advertise —
// the only set frame.Stream is allowed to actually use for a channel.
func Negotiate(client, server Features) Features {
	return client & server
}

// ServerFeatures reports which codecs this build can actually perform,
// independent of what any client advertises.
func ServerFeatures() Features {
	return FeatureJPEG | FeatureSnappy
}

// ReadFeatures reads a Features bitmask from r.
func ReadFeatures(r *wire.Reader) (Features, error) {
	v, err := r.ReadU32()
	return Features(v), err
}

// WriteFeatures writes f to w.
func WriteFeatures(w *wire.Writer, f Features) {
	w.WriteU32(uint32(f))
}
