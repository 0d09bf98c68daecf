package resource

import (
	"encoding/binary"
	"testing"

	"github.com/lumenforge/renderbridge/wire"
)

func TestDeviceIDsStartAtOneAndAreMonotonic(t *testing.T) {
	m := NewManager()
	first := m.RegisterDevice(0xA001)
	second := m.RegisterDevice(0xA002)
	if first != 1 {
		t.Fatalf("first device id = %d, want 1", first)
	}
	if second != 2 {
		t.Fatalf("second device id = %d, want 2", second)
	}
	if _, ok := m.Device(0); ok {
		t.Fatal("device id 0 should always be unknown")
	}
}

func TestRegisterAndLookupObject(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	m.RegisterObject(dev, 7, 0xA007)

	handle, ok := m.Object(dev, 7)
	if !ok || handle != 0xA007 {
		t.Fatalf("Object(dev, 7) = %#x, %v, want 0xA007, true", handle, ok)
	}
}

func TestObjectIDsAreClientChosenAndMayBeSparse(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	m.RegisterObject(dev, 4, 0xA004)
	m.RegisterObject(dev, 5, 0xA005)
	m.RegisterArray(dev, 9, 0xA009, ArrayInfo{ElementType: wire.TypeObject, Dim1: 2})

	info, ok := m.GetArrayInfo(dev, 9)
	if !ok || info.Dim1 != 2 {
		t.Fatalf("GetArrayInfo(dev, 9) = %+v, %v", info, ok)
	}
	if _, ok := m.GetArrayInfo(dev, 4); ok {
		t.Fatal("GetArrayInfo on a non-array object should report false")
	}
}

func TestUnknownObjectLookupsReportFalse(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	if _, ok := m.Object(dev, 99999); ok {
		t.Fatal("Object on empty manager should report false")
	}
}

// TestObjectIDsAreScopedPerDevice reproduces two devices whose client
// reuses the same object id under each: the second device's registration
// must not clobber the first's, and each device's id must only resolve
// against its own handle.
func TestObjectIDsAreScopedPerDevice(t *testing.T) {
	m := NewManager()
	devA := m.RegisterDevice(0xA001)
	devB := m.RegisterDevice(0xA002)

	m.RegisterObject(devA, 1, 0xA101)
	m.RegisterObject(devB, 1, 0xA201)

	handleA, ok := m.Object(devA, 1)
	if !ok || handleA != 0xA101 {
		t.Fatalf("Object(devA, 1) = %#x, %v, want 0xA101, true", handleA, ok)
	}
	handleB, ok := m.Object(devB, 1)
	if !ok || handleB != 0xA201 {
		t.Fatalf("Object(devB, 1) = %#x, %v, want 0xA201, true", handleB, ok)
	}

	// Same check for arrays, which share the object table.
	m.RegisterArray(devA, 2, 0xA102, ArrayInfo{ElementType: wire.TypeFloat32, Dim1: 4})
	m.RegisterArray(devB, 2, 0xA202, ArrayInfo{ElementType: wire.TypeFloat32, Dim1: 8})

	infoA, ok := m.GetArrayInfo(devA, 2)
	if !ok || infoA.Dim1 != 4 {
		t.Fatalf("GetArrayInfo(devA, 2) = %+v, %v, want Dim1=4", infoA, ok)
	}
	infoB, ok := m.GetArrayInfo(devB, 2)
	if !ok || infoB.Dim1 != 8 {
		t.Fatalf("GetArrayInfo(devB, 2) = %+v, %v, want Dim1=8", infoB, ok)
	}

	// An id registered only under devA must not resolve under devB.
	if _, ok := m.Object(devB, 1); !ok {
		t.Fatal("unreachable: devB's own id 1 should resolve")
	}
	m.RegisterObject(devA, 3, 0xA103)
	if _, ok := m.Object(devB, 3); ok {
		t.Fatal("id 3 registered only under devA must not resolve under devB")
	}
}

func TestNextDeviceIDPreviewsWithoutAllocating(t *testing.T) {
	m := NewManager()
	if got := m.NextDeviceID(); got != 1 {
		t.Fatalf("NextDeviceID = %d, want 1", got)
	}
	m.RegisterDevice(0xA001)
	if got := m.NextDeviceID(); got != 2 {
		t.Fatalf("NextDeviceID after one registration = %d, want 2", got)
	}
}

func TestDeviceFeaturesRoundTrip(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	m.SetDeviceFeatures(dev, 0b11)

	got, ok := m.DeviceFeatures(dev)
	if !ok || got != 0b11 {
		t.Fatalf("DeviceFeatures(%d) = %d, %v, want 0b11, true", dev, got, ok)
	}
	if _, ok := m.DeviceFeatures(99); ok {
		t.Fatal("DeviceFeatures on unknown device should report false")
	}
}

func TestTranslateObjectRef(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	m.RegisterObject(dev, 9, 0xCAFEBABE)

	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 9)

	translated := m.TranslateObjectRef(dev, raw)
	if got := binary.LittleEndian.Uint64(translated); got != 0xCAFEBABE {
		t.Errorf("TranslateObjectRef = %#x, want 0xCAFEBABE", got)
	}
}

func TestTranslateObjectRefUnknownIDYieldsNullHandle(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 999)

	translated := m.TranslateObjectRef(dev, raw)
	if got := binary.LittleEndian.Uint64(translated); got != 0 {
		t.Errorf("TranslateObjectRef(unknown) = %#x, want 0", got)
	}
}

// TestTranslateObjectRefDoesNotCrossDevices checks that an id registered
// under one device does not resolve when translated against another.
func TestTranslateObjectRefDoesNotCrossDevices(t *testing.T) {
	m := NewManager()
	devA := m.RegisterDevice(0xA001)
	devB := m.RegisterDevice(0xA002)
	m.RegisterObject(devA, 9, 0xCAFEBABE)

	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 9)

	translated := m.TranslateObjectRef(devB, raw)
	if got := binary.LittleEndian.Uint64(translated); got != 0 {
		t.Errorf("TranslateObjectRef(devB, id registered only under devA) = %#x, want 0 (null handle)", got)
	}
}

// TestTranslateArrayOfObjects reproduces spec scenario 2 verbatim: objects 4
// and 5 registered on device 1, an array seeded with ids [4,5] must present
// as device handles [0xA004, 0xA005] to the adapter.
func TestTranslateArrayOfObjects(t *testing.T) {
	m := NewManager()
	dev := m.RegisterDevice(0xA001)
	m.RegisterObject(dev, 4, 0xA004)
	m.RegisterObject(dev, 5, 0xA005)

	raw := make([]byte, 16)
	binary.LittleEndian.PutUint64(raw[0:], 4)
	binary.LittleEndian.PutUint64(raw[8:], 5)

	translated := m.TranslateArray(dev, raw)
	if got := binary.LittleEndian.Uint64(translated[0:]); got != 0xA004 {
		t.Errorf("element 0 = %#x, want 0xA004", got)
	}
	if got := binary.LittleEndian.Uint64(translated[8:]); got != 0xA005 {
		t.Errorf("element 1 = %#x, want 0xA005", got)
	}
}
