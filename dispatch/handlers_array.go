package dispatch

import (
	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/resource"
	"github.com/lumenforge/renderbridge/wire"
)

// arrayRank names the dimensionality encoded in NEW_ARRAY's rank_type
// field.
type arrayRank uint32

const (
	rank1D arrayRank = 1
	rank2D arrayRank = 2
	rank3D arrayRank = 3
)

// arrayElementCount returns the total element count for the given rank and
// dimensions; n2/n3 are ignored below their rank (NEW_ARRAY always sends
// all three fields regardless of rank, zero-filled past the real rank).
func arrayElementCount(rank arrayRank, n1, n2, n3 uint64) uint64 {
	switch rank {
	case rank2D:
		return n1 * n2
	case rank3D:
		return n1 * n2 * n3
	default:
		return n1
	}
}

// handleNewArray implements NEW_ARRAY ⇒
// <u64 device_id><u32 rank_type><u64 object_id><u32 element_type>
// <u64 n1><u64 n2><u64 n3>[data…]. If payload bytes remain after the fixed
// fields they seed the array's initial contents; if the element type is
// object-kind, the seed is translated in place before being handed to the
// adapter. There is no wire reply.
//
// A present-but-truncated seed (fewer bytes than the array's declared shape
// needs) is rejected outright: the message is logged and dropped without
// registering the array, rather than zero-filling or reading past what was
// sent. A seed with no bytes at all is not truncated — it means "no
// initial contents" and the array is still created.
func handleNewArray(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	rankVal, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	objectID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	elementType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	n1, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	n2, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	n3, err := r.ReadU64()
	if err != nil {
		return nil, err
	}

	rank := arrayRank(rankVal)
	expectedSize := int(arrayElementCount(rank, n1, n2, n3)) * elementType.SizeOf()

	var seed []byte
	if remaining := r.Remaining(); remaining > 0 {
		if remaining < expectedSize {
			d.logf(wire.SeverityError, "dispatch: NEW_ARRAY object %d: seed has %d bytes, want %d, dropping", objectID, remaining, expectedSize)
			return nil, nil
		}
		seed, err = r.ReadBytes(expectedSize)
		if err != nil {
			return nil, err
		}
		if elementType.IsObject() {
			seed = d.Resource.TranslateArray(resource.ObjectID(deviceID), seed)
		}
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	handle := newArrayOfRank(d.Device, devHandle, objectID, rank, elementType, n1, n2, n3, seed)

	info := resource.ArrayInfo{ElementType: elementType, Dim1: n1, Dim2: n2, Dim3: n3}
	d.Resource.RegisterArray(resource.ObjectID(deviceID), resource.ObjectID(objectID), uint64(handle), info)
	return nil, nil
}

// newArrayOfRank dispatches to the adapter's rank-specific constructor —
// the rendering API has three distinct entry points (1D/2D/3D) rather than
// one rank-parametrized call, so this is the one place that bridges a
// single wire field back to three Go methods.
func newArrayOfRank(dev device.RenderDevice, devHandle device.Handle, objectID uint64, rank arrayRank, elementType wire.DataType, n1, n2, n3 uint64, seed []byte) device.Handle {
	switch rank {
	case rank2D:
		return dev.NewArray2D(devHandle, objectID, elementType, n1, n2, seed)
	case rank3D:
		return dev.NewArray3D(devHandle, objectID, elementType, n1, n2, n3, seed)
	default:
		return dev.NewArray1D(devHandle, objectID, elementType, n1, seed)
	}
}

// handleMapArray implements MAP_ARRAY ⇒ <u64 device_id><u64 object_id>;
// reply ARRAY_MAPPED ⇒ <u64 object_id><u64 num_bytes><bytes> — the whole
// buffer ships to the client in one frame rather than a paged protocol.
func handleMapArray(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, objectID, ok, err := readDeviceObjectPair(d, r)
	if err != nil || !ok {
		return nil, err
	}
	devHandle, ok := d.lookupDevice(deviceID)
	if !ok {
		return nil, nil
	}
	objHandle, ok := d.lookupObject(deviceID, objectID)
	if !ok {
		return nil, nil
	}

	data := d.Device.MapArray(devHandle, objHandle)

	w := wire.NewWriter()
	w.WriteU64(uint64(objectID))
	w.WriteU64(uint64(len(data)))
	w.WriteBytes(data)
	return []wire.Frame{{Opcode: wire.ArrayMapped, Payload: w.Bytes()}}, nil
}

// handleUnmapArray implements UNMAP_ARRAY ⇒
// <u64 device_id><u64 object_id><u64 num_bytes><bytes>. The map/copy/unmap
// sequence is followed literally in that order — unmap, then remap, copy,
// unmap again — and must not be collapsed, since the rendering API only
// accepts writes through a freshly mapped pointer. Reply ARRAY_UNMAPPED ⇒
// <u64 object_id>.
func handleUnmapArray(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, objectID, ok, err := readDeviceObjectPair(d, r)
	if err != nil || !ok {
		return nil, err
	}
	numBytes, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(int(numBytes))
	if err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(deviceID)
	if !ok {
		return nil, nil
	}
	objHandle, ok := d.lookupObject(deviceID, objectID)
	if !ok {
		return nil, nil
	}

	if info, ok := d.Resource.GetArrayInfo(deviceID, objectID); ok && info.ElementType.IsObject() {
		data = d.Resource.TranslateArray(deviceID, data)
	}

	d.Device.UnmapArray(devHandle, objHandle)
	mapped := d.Device.MapArray(devHandle, objHandle)
	copy(mapped, data)
	d.Device.UnmapArray(devHandle, objHandle)

	w := wire.NewWriter()
	w.WriteU64(uint64(objectID))
	return []wire.Frame{{Opcode: wire.ArrayUnmapped, Payload: w.Bytes()}}, nil
}
