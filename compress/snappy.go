package compress

import "github.com/golang/snappy"

// SnappyEncoder is the codec for the depth channel: a lossless
// byte-stream compressor, since a 32-bit float depth plane cannot tolerate
// the quantization a lossy image codec would introduce.
type SnappyEncoder struct{}

// MaxBound returns snappy's own worst-case bound for inputSize bytes.
func (SnappyEncoder) MaxBound(inputSize int) int {
	return snappy.MaxEncodedLen(inputSize)
}

// Encode compresses data with Snappy.
func (SnappyEncoder) Encode(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// Decode decompresses a Snappy stream back to its original bytes.
func (SnappyEncoder) Decode(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
