package wire

import (
	"bytes"
	"testing"
)

func TestWriteReadFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4, 5}

	if err := WriteFrame(&buf, SetParam, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Opcode != SetParam {
		t.Errorf("Opcode = %v, want %v", frame.Opcode, SetParam)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("Payload = %v, want %v", frame.Payload, payload)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0}) // opcode
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})

	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for oversized frame length")
	}
}

func TestReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(42)
	w.WriteU64(0xDEADBEEF)
	w.WriteString("hello")
	w.WriteStringList([]string{"a", "bb", "ccc"})
	w.WriteParameterList([]Parameter{
		{Name: "color", Type: TypeUFixed8RGBASRGB},
		{Name: "camera", Type: TypeCamera},
	})
	w.WriteF32(3.5)

	r := NewReader(w.Bytes())

	u32, err := r.ReadU32()
	if err != nil || u32 != 42 {
		t.Fatalf("ReadU32 = %d, %v, want 42", u32, err)
	}
	u64, err := r.ReadU64()
	if err != nil || u64 != 0xDEADBEEF {
		t.Fatalf("ReadU64 = %d, %v, want 0xDEADBEEF", u64, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v, want hello", s, err)
	}
	list, err := r.ReadStringList()
	if err != nil || len(list) != 3 || list[1] != "bb" {
		t.Fatalf("ReadStringList = %v, %v", list, err)
	}
	params, err := r.ReadParameterList()
	if err != nil || len(params) != 2 || params[0].Name != "color" || params[1].Type != TypeCamera {
		t.Fatalf("ReadParameterList = %v, %v", params, err)
	}
	f, err := r.ReadF32()
	if err != nil || f != 3.5 {
		t.Fatalf("ReadF32 = %v, %v, want 3.5", f, err)
	}
	if !r.AtEnd() {
		t.Errorf("expected reader to be at end, %d bytes remaining", r.Remaining())
	}
}

func TestReaderShortReadError(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadU32(); err == nil {
		t.Fatal("expected short-read error")
	}
}

func TestDataTypeIsObject(t *testing.T) {
	cases := []struct {
		t    DataType
		want bool
	}{
		{TypeCamera, true},
		{TypeArray1D, true},
		{TypeObject, true},
		{TypeUnknown, false},
		{TypeFloat32, false},
		{TypeString, false},
	}
	for _, c := range cases {
		if got := c.t.IsObject(); got != c.want {
			t.Errorf("DataType(%d).IsObject() = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestDataTypeSizeOf(t *testing.T) {
	cases := []struct {
		t    DataType
		want int
	}{
		{TypeCamera, 8}, // object handle width
		{TypeBool, 1},
		{TypeUInt8, 1},
		{TypeInt32, 4},
		{TypeFloat32, 4},
		{TypeUFixed8RGBASRGB, 4},
		{TypeUInt64, 8},
		{TypeString, 0},
	}
	for _, c := range cases {
		if got := c.t.SizeOf(); got != c.want {
			t.Errorf("DataType(%d).SizeOf() = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	if NewDevice.String() != "NEW_DEVICE" {
		t.Errorf("NewDevice.String() = %q", NewDevice.String())
	}
	if Opcode(9999).String() != "OPCODE(9999)" {
		t.Errorf("unknown opcode String() = %q", Opcode(9999).String())
	}
}
