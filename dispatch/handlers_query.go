package dispatch

import (
	"github.com/lumenforge/renderbridge/resource"
	"github.com/lumenforge/renderbridge/wire"
)

// writeQueryResult writes the shared "found flag + payload" tail every
// query reply in this file ends with: <i32 result>{payload}. The adapter's
// typed-query methods return payload already shaped for the wire (POD
// bytes, or a self-describing string/string-list/parameter-list encoding);
// the dispatcher never re-encodes it, only forwards it verbatim.
func writeQueryResult(w *wire.Writer, value []byte, found bool) {
	if !found {
		w.WriteI32(0)
		return
	}
	w.WriteI32(1)
	w.WriteBytes(value)
}

// rejectDataTypeList enforces the one fatal-error rule shared by every
// GET_*_INFO / GET_PROPERTY opcode: DATA_TYPE_LIST has no description to
// return, so requesting it ends the connection instead of logging past it.
func rejectDataTypeList(opcode wire.Opcode, t wire.DataType) error {
	if t == wire.TypeDataTypeList {
		return &FatalError{Opcode: opcode, Reason: "DATA_TYPE_LIST is not implemented"}
	}
	return nil
}

// handleGetProperty implements GET_PROPERTY ⇒
// <u64 device_id><u64 object_id><string name><u32 type><u64 size><u32 wait_mask>;
// reply PROPERTY ⇒ <u64 object_id><string name><i32 result>{payload}.
func handleGetProperty(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	propType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	mask, err := r.ReadWaitMask()
	if err != nil {
		return nil, err
	}
	if err := rejectDataTypeList(wire.GetProperty, propType); err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}
	objHandle, ok := d.lookupObject(resource.ObjectID(deviceID), resource.ObjectID(objectID))
	if !ok {
		return nil, nil
	}

	value, found := d.Device.GetProperty(devHandle, objHandle, name, propType, size, mask)

	w := wire.NewWriter()
	w.WriteU64(objectID)
	w.WriteString(name)
	writeQueryResult(w, value, found)
	return []wire.Frame{{Opcode: wire.Property, Payload: w.Bytes()}}, nil
}

// handleGetObjectSubtypes implements GET_OBJECT_SUBTYPES ⇒
// <u64 device_id><u32 object_type>; reply OBJECT_SUBTYPES ⇒ <string_list>.
func handleGetObjectSubtypes(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	objType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	subtypes := d.Device.GetObjectSubtypes(devHandle, objType)

	w := wire.NewWriter()
	w.WriteStringList(subtypes)
	return []wire.Frame{{Opcode: wire.ObjectSubtypes, Payload: w.Bytes()}}, nil
}

// handleGetObjectInfo implements GET_OBJECT_INFO ⇒
// <u64 device_id><u32 object_type><string subtype><string info_name><u32 info_type>;
// reply OBJECT_INFO ⇒ <string info_name><i32 result>{payload}.
func handleGetObjectInfo(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	infoName, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	infoType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	if err := rejectDataTypeList(wire.GetObjectInfo, infoType); err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	value, found := d.Device.GetObjectInfo(devHandle, objType, subtype, infoName, infoType)

	w := wire.NewWriter()
	w.WriteString(infoName)
	writeQueryResult(w, value, found)
	return []wire.Frame{{Opcode: wire.ObjectInfo, Payload: w.Bytes()}}, nil
}

// handleGetParameterInfo implements GET_PARAMETER_INFO ⇒
// <u64 device_id><u32 object_type><string subtype><string param_name>
// <u32 param_type><string info_name><u32 info_type>;
// reply PARAMETER_INFO ⇒ <string param_name><string info_name><i32 result>{payload}.
func handleGetParameterInfo(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
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
	paramName, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	paramType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	infoName, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	infoType, err := r.ReadDataType()
	if err != nil {
		return nil, err
	}
	if err := rejectDataTypeList(wire.GetParameterInfo, infoType); err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}

	value, found := d.Device.GetParameterInfo(devHandle, objType, subtype, paramName, paramType, infoName, infoType)

	w := wire.NewWriter()
	w.WriteString(paramName)
	w.WriteString(infoName)
	writeQueryResult(w, value, found)
	return []wire.Frame{{Opcode: wire.ParameterInfo, Payload: w.Bytes()}}, nil
}
