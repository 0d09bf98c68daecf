package resource

import "encoding/binary"

// TranslateObjectRef translates an 8-byte client object id, registered under
// dev, into the device-native handle it maps to, returned as a new 8-byte
// slice; raw is left unchanged. It is used for
// SET_PARAM payloads whose declared type is object-kind: the client only
// ever speaks in object ids, so every such reference must be translated
// before it reaches device.RenderDevice.
//
// An id with no registered object (e.g. the client passed a stale or
// out-of-range id) translates to a null handle (0) rather than erroring —
// matching NEW_OBJECT's own "unknown things produce a null result, keep
// going" stance so one bad reference doesn't tear down the connection.
func (m *Manager) TranslateObjectRef(dev ObjectID, raw []byte) []byte {
	id := ObjectID(binary.LittleEndian.Uint64(raw))
	handle, ok := m.Object(dev, id)
	if !ok {
		handle = 0
	}
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, handle)
	return out
}

// TranslateArray translates every 8-byte client object id in data, all
// registered under dev, into its device-native handle, element by element,
// writing the results into a new slice of the same length; data is left
// unchanged. It is the array analogue of TranslateObjectRef, used by
// NEW_ARRAY and UNMAP_ARRAY when an array's element type is object-kind.
//
// data's length must be a multiple of 8 (the client-side wire width of an
// object id); callers are expected to have validated element count against
// payload length before calling this.
func (m *Manager) TranslateArray(dev ObjectID, data []byte) []byte {
	out := make([]byte, len(data))
	for off := 0; off+8 <= len(data); off += 8 {
		id := ObjectID(binary.LittleEndian.Uint64(data[off:]))
		handle, ok := m.Object(dev, id)
		if !ok {
			handle = 0
		}
		binary.LittleEndian.PutUint64(out[off:], handle)
	}
	return out
}
