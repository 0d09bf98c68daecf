// Package resource tracks the mapping between client-visible object ids and
// device-native handles for one connection. It is a near 1:1 port of
// ResourceManager from the original remote-device server, adapted to two
// distinct id disciplines the protocol actually uses:
//
//   - device ids are assigned BY the manager, strictly monotonic starting
//     at 1, so devices are a simple append-only slice.
//   - object and array ids are chosen BY the client (the GLOSSARY calls an
//     object id "a client-chosen integer") and may be sparse or arrive out
//     of order, so they are stored in a map rather than grown as a dense
//     vector. The same client-chosen id may be reused under a different
//     device, so every object/array table is keyed by (device id, object
//     id), not object id alone — two devices opened by the same client
//     never share a slot even if they happen to reuse the same ids.
//
// A Manager is only ever touched by the connection's reader/dispatcher
// goroutine, so none of its methods take a lock.
package resource

import "github.com/lumenforge/renderbridge/wire"

// ObjectID is the client-visible identifier for a device, object, or array —
// always 8 bytes on the wire.
type ObjectID uint64

// deviceRecord is one registered device.
type deviceRecord struct {
	handle uint64
	// features is the client's advertised compression capability set,
	// received as part of NEW_DEVICE's payload. Stored as a plain uint32
	// so this package does not need to import compress for one bitmask
	// field; dispatch casts it to compress.Features.
	features uint32
}

// objectKey identifies one object/array slot: the device that owns it plus
// the client-chosen id, since ids are chosen independently per device and
// are not guaranteed unique across devices.
type objectKey struct {
	device ObjectID
	object ObjectID
}

// objectRecord is one registered object (includes arrays, which also get an
// ArrayInfo entry — an object is always created alongside its array info
// when the object is itself an array).
type objectRecord struct {
	handle uint64
}

// ArrayInfo records the shape needed to interpret MapArray's raw bytes and
// to know whether an array's elements need handle translation.
type ArrayInfo struct {
	ElementType wire.DataType
	Dim1        uint64
	Dim2        uint64 // 0 for 1D arrays
	Dim3        uint64 // 0 for 1D/2D arrays
}

// Manager owns one connection's object-id ↔ device-handle tables.
type Manager struct {
	devices []deviceRecord
	objects map[objectKey]objectRecord
	arrays  map[objectKey]ArrayInfo
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		objects: make(map[objectKey]objectRecord),
		arrays:  make(map[objectKey]ArrayInfo),
	}
}

// NextDeviceID returns the id RegisterDevice will hand out next, without
// allocating it. The dispatcher needs this before the device handle
// exists — a test adapter's handle can be a deterministic function of the
// id it is about to be registered under.
func (m *Manager) NextDeviceID() ObjectID {
	return ObjectID(uint64(len(m.devices)) + 1)
}

// RegisterDevice assigns the next device id to handle and returns it. Ids
// are assigned starting at 1, strictly monotonic, since 0 is reserved as
// "no device" in the wire protocol's device_id=0 convention for top-level,
// device-less queries.
func (m *Manager) RegisterDevice(handle uint64) ObjectID {
	id := ObjectID(uint64(len(m.devices)) + 1)
	m.devices = append(m.devices, deviceRecord{handle: handle})
	return id
}

// SetDeviceFeatures records the client's advertised compression
// capabilities for an already-registered device.
func (m *Manager) SetDeviceFeatures(id ObjectID, features uint32) {
	if id == 0 || uint64(id) > uint64(len(m.devices)) {
		return
	}
	m.devices[id-1].features = features
}

// DeviceFeatures returns the client compression features previously
// recorded by SetDeviceFeatures, or (0, false) if id is unknown.
func (m *Manager) DeviceFeatures(id ObjectID) (uint32, bool) {
	if id == 0 || uint64(id) > uint64(len(m.devices)) {
		return 0, false
	}
	return m.devices[id-1].features, true
}

// Device returns the device-native handle for id, or (0, false) if id is
// unknown. Ids are 1-based; id 0 is always unknown.
func (m *Manager) Device(id ObjectID) (uint64, bool) {
	if id == 0 || uint64(id) > uint64(len(m.devices)) {
		return 0, false
	}
	return m.devices[id-1].handle, true
}

// RegisterObject records handle for the client-supplied id under dev.
// Arrays are registered through this same table — RegisterArray calls it
// internally. Re-registering an id that already exists under the same dev
// overwrites the prior record; the dispatcher is expected not to do this,
// since the wire protocol never reuses an id within a session on the same
// device.
func (m *Manager) RegisterObject(dev, id ObjectID, handle uint64) {
	m.objects[objectKey{dev, id}] = objectRecord{handle: handle}
}

// RegisterArray registers handle as a new object at (dev, id) and records
// its shape.
func (m *Manager) RegisterArray(dev, id ObjectID, handle uint64, info ArrayInfo) {
	m.RegisterObject(dev, id, handle)
	m.arrays[objectKey{dev, id}] = info
}

// Object returns the device-native handle for id under dev, or (0, false)
// if that (dev, id) pair was never registered. Releasing an object on the
// rendering API does not reclaim its record here (slots are address
// space, not ownership) — there is no corresponding Release on Manager.
func (m *Manager) Object(dev, id ObjectID) (uint64, bool) {
	rec, ok := m.objects[objectKey{dev, id}]
	return rec.handle, ok
}

// GetArrayInfo returns the recorded shape for array id under dev, or
// (ArrayInfo{}, false) if that pair was never registered as an array.
func (m *Manager) GetArrayInfo(dev, id ObjectID) (ArrayInfo, bool) {
	info, ok := m.arrays[objectKey{dev, id}]
	return info, ok
}
