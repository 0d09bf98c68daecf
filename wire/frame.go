package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxPayload bounds a single frame's payload so a corrupt or hostile length
// field can't make the reader allocate unbounded memory.
const maxPayload = 256 << 20 // 256 MiB, comfortably above a 4K color frame

// Frame is one decoded <opcode><length><payload> message.
type Frame struct {
	Opcode  Opcode
	Payload []byte
}

// ReadFrame reads one frame from r. A short read of the header or payload
// returns io.ErrUnexpectedEOF so callers can distinguish "clean close"
// (io.EOF on the header boundary) from a truncated message.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}

	opcode := Opcode(binary.LittleEndian.Uint32(header[0:4]))
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > maxPayload {
		return Frame{}, fmt.Errorf("wire: frame length %d exceeds maximum %d", length, maxPayload)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Frame{}, err
		}
	}

	return Frame{Opcode: opcode, Payload: payload}, nil
}

// WriteFrame writes one frame to w as a single length-prefixed message.
func WriteFrame(w io.Writer, opcode Opcode, payload []byte) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(opcode))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
