package wire

import (
	"encoding/binary"
	"math"
)

// Writer is an append-only payload builder. Unlike Reader it cannot fail —
// growing a []byte never errors — so its methods have no error return,
// keeping reply-construction code in dispatch/frame terse.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer. Callers that know the final size can
// call Grow to avoid reallocation.
func NewWriter() *Writer {
	return &Writer{}
}

// Grow pre-reserves n additional bytes of capacity.
func (w *Writer) Grow(n int) {
	if cap(w.buf)-len(w.buf) < n {
		buf := make([]byte, len(w.buf), len(w.buf)+n)
		copy(buf, w.buf)
		w.buf = buf
	}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

func (w *Writer) WriteDataType(t DataType) {
	w.WriteU32(uint32(t))
}

func (w *Writer) WriteWaitMask(m WaitMask) {
	w.WriteU32(uint32(m))
}

// WriteString writes a <u32 length><utf8 bytes> string.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteStringList writes a <u32 count><count strings> list.
func (w *Writer) WriteStringList(list []string) {
	w.WriteU32(uint32(len(list)))
	for _, s := range list {
		w.WriteString(s)
	}
}

// WriteParameterList writes a <u32 count><count <string name><u32 type>> list.
func (w *Writer) WriteParameterList(list []Parameter) {
	w.WriteU32(uint32(len(list)))
	for _, p := range list {
		w.WriteString(p.Name)
		w.WriteDataType(p.Type)
	}
}
