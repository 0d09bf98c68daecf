package compress

import (
	"testing"

	"github.com/lumenforge/renderbridge/wire"
)

func TestFeaturesNegotiate(t *testing.T) {
	cases := []struct {
		client, server, want Features
	}{
		{FeatureJPEG, FeatureJPEG | FeatureSnappy, FeatureJPEG},
		{0, FeatureJPEG | FeatureSnappy, 0},
		{FeatureJPEG | FeatureSnappy, FeatureJPEG | FeatureSnappy, FeatureJPEG | FeatureSnappy},
	}
	for _, c := range cases {
		if got := Negotiate(c.client, c.server); got != c.want {
			t.Errorf("Negotiate(%v, %v) = %v, want %v", c.client, c.server, got, c.want)
		}
	}
}

func TestFeaturesHasMethods(t *testing.T) {
	f := FeatureJPEG
	if !f.HasJPEG() {
		t.Error("HasJPEG should be true")
	}
	if f.HasSnappy() {
		t.Error("HasSnappy should be false")
	}
}

func TestFeaturesWireRoundTrip(t *testing.T) {
	w := wire.NewWriter()
	WriteFeatures(w, FeatureJPEG|FeatureSnappy)

	r := wire.NewReader(w.Bytes())
	got, err := ReadFeatures(r)
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if got != FeatureJPEG|FeatureSnappy {
		t.Errorf("got %v, want FeatureJPEG|FeatureSnappy", got)
	}
}

func TestJPEGEncodeDecodeRoundTrip(t *testing.T) {
	const w, h = 4, 4
	rgba := make([]byte, w*h*4)
	for i := range rgba {
		rgba[i] = byte(i % 256)
		if i%4 == 3 {
			rgba[i] = 255
		}
	}

	enc := JPEGEncoder{}
	compressed, err := enc.Encode(w, h, rgba)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("Encode produced empty output")
	}
	if len(compressed) > enc.MaxBound(len(rgba)) {
		t.Errorf("compressed size %d exceeds MaxBound %d", len(compressed), enc.MaxBound(len(rgba)))
	}

	decoded, gotW, gotH, err := enc.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotW != w || gotH != h {
		t.Errorf("decoded dims = %dx%d, want %dx%d", gotW, gotH, w, h)
	}
	if len(decoded) != w*h*4 {
		t.Errorf("decoded length = %d, want %d", len(decoded), w*h*4)
	}
}

func TestJPEGEncodeRejectsMismatchedBufferLength(t *testing.T) {
	enc := JPEGEncoder{}
	if _, err := enc.Encode(4, 4, make([]byte, 10)); err == nil {
		t.Fatal("expected error for mismatched buffer length")
	}
}

func TestSnappyEncodeDecodeRoundTrip(t *testing.T) {
	enc := SnappyEncoder{}
	original := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")

	compressed := enc.Encode(original)
	if len(compressed) > enc.MaxBound(len(original)) {
		t.Errorf("compressed size %d exceeds MaxBound %d", len(compressed), enc.MaxBound(len(original)))
	}

	decoded, err := enc.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded) != string(original) {
		t.Errorf("Decode = %q, want %q", decoded, original)
	}
}
