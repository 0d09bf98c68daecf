package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a cursor-bearing positional reader over one message payload.
// cursor == len(buf) is a valid end-of-payload state; every Read* method
// advances the cursor and returns an error if the payload is shorter than
// the field being read, so a short/malformed message surfaces as a single
// error the dispatcher can log and drop rather than panicking mid-parse.
type Reader struct {
	buf    []byte
	cursor int
}

// NewReader wraps buf for positional reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread payload bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.cursor
}

// AtEnd reports whether the cursor has reached the end of the payload.
func (r *Reader) AtEnd() bool {
	return r.cursor == len(r.buf)
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("wire: short read: need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.cursor : r.cursor+n]
	r.cursor += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadDataType() (DataType, error) {
	v, err := r.ReadU32()
	return DataType(v), err
}

func (r *Reader) ReadSeverity() (Severity, error) {
	v, err := r.ReadU32()
	return Severity(v), err
}

func (r *Reader) ReadWaitMask() (WaitMask, error) {
	v, err := r.ReadU32()
	return WaitMask(v), err
}

// ReadString reads a <u32 length><utf8 bytes> string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadStringList reads a <u32 count><count strings> list.
func (r *Reader) ReadStringList() ([]string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	list := make([]string, n)
	for i := range list {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		list[i] = s
	}
	return list, nil
}

// ReadParameterList reads a <u32 count><count <string name><u32 type>> list.
func (r *Reader) ReadParameterList() ([]Parameter, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	list := make([]Parameter, n)
	for i := range list {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		t, err := r.ReadDataType()
		if err != nil {
			return nil, err
		}
		list[i] = Parameter{Name: name, Type: t}
	}
	return list, nil
}
