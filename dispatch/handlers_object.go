package dispatch

import (
	"github.com/lumenforge/renderbridge/resource"
	"github.com/lumenforge/renderbridge/wire"
)

// handleNewObject implements NEW_OBJECT ⇒
// <u64 device_id><u32 type><string subtype><u64 object_id>. Unknown types
// produce a null handle recorded as-is; there is no wire reply.
func handleNewObject(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	objType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	subtype, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	objectID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	handle := d.Device.NewObject(devHandle, objectID, objType, subtype)
	d.Resource.RegisterObject(resource.ObjectID(deviceID), resource.ObjectID(objectID), uint64(handle))
	return nil, nil
}

// handleSetParam implements SET_PARAM ⇒
// <u64 device_id><u64 object_id><string name><u32 type><payload>. Object-kind
// values are translated from client object id to device-native handle
// before reaching the adapter.
func handleSetParam(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	objectID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	paramType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}

	value, err := readParamValue(r, paramType)
	if err != nil {
		return nil, err
	}
	if paramType.IsObject() {
		value = d.Resource.TranslateObjectRef(resource.ObjectID(deviceID), value)
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}
	objHandle, ok := d.lookupObject(resource.ObjectID(deviceID), resource.ObjectID(objectID))
	if !ok {
		return nil, nil
	}

	d.Device.SetParameter(devHandle, objHandle, name, paramType, value)
	return nil, nil
}

// readParamValue reads a SET_PARAM value payload sized by paramType: object
// references are always 8 bytes on the wire regardless of the object kind's
// own handle representation; strings are length-prefixed.
func readParamValue(r *wire.Reader, t wire.DataType) ([]byte, error) {
	if t == wire.TypeString {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return r.ReadBytes(t.SizeOf())
}

// handleUnsetParam implements UNSET_PARAM ⇒
// <u64 device_id><u64 object_id><string name>.
func handleUnsetParam(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, objectID, ok, err := readDeviceObjectPair(d, r)
	if err != nil || !ok {
		return nil, err
	}
	name, err := r.ReadString()
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
	d.Device.UnsetParameter(devHandle, objHandle, name)
	return nil, nil
}

// handleUnsetAllParams implements UNSET_ALL_PARAMS ⇒ <u64 device_id><u64 object_id>.
func handleUnsetAllParams(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	d.Device.UnsetAllParameters(devHandle, objHandle)
	return nil, nil
}

// handleCommitParams implements COMMIT_PARAMS's two shapes: a payload of
// exactly one u64 commits the device itself; a payload of two commits the
// (device, object) pair.
func handleCommitParams(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	if r.AtEnd() {
		d.Device.CommitParameters(devHandle, devHandle)
		return nil, nil
	}

	objectID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	objHandle, ok := d.lookupObject(resource.ObjectID(deviceID), resource.ObjectID(objectID))
	if !ok {
		return nil, nil
	}
	d.Device.CommitParameters(devHandle, objHandle)
	return nil, nil
}

// handleRelease implements RELEASE ⇒ <u64 device_id><u64 object_id>. The
// resource manager's record is never reclaimed here — only the adapter's
// own reference count is affected.
func handleRelease(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	d.Device.Release(devHandle, objHandle)
	return nil, nil
}

// handleRetain implements RETAIN ⇒ <u64 device_id><u64 object_id>.
func handleRetain(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	d.Device.Retain(devHandle, objHandle)
	return nil, nil
}

// readDeviceObjectPair reads the common <u64 device_id><u64 object_id>
// prefix several opcodes share. ok is false only on a read error (err is
// then non-nil); callers still need to resolve the ids to handles
// themselves since a bad id is "log and continue", not a read failure.
func readDeviceObjectPair(d *Dispatcher, r *wire.Reader) (deviceID, objectID resource.ObjectID, ok bool, err error) {
	dev, err := r.ReadU64()
	if err != nil {
		return 0, 0, false, err
	}
	obj, err := r.ReadU64()
	if err != nil {
		return 0, 0, false, err
	}
	return resource.ObjectID(dev), resource.ObjectID(obj), true, nil
}
