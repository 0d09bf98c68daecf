package dispatch

import (
	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/wire"
)

// handleNewDevice implements NEW_DEVICE ⇒ <string subtype><client_features>;
// reply DEVICE_HANDLE ⇒ <u64 device_id><u32 server_features>.
func handleNewDevice(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	subtype, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	clientFeatures, err := compress.ReadFeatures(r)
	if err != nil {
		return nil, err
	}

	nextID := d.Resource.NextDeviceID()
	handle, err := d.Library.NewDevice(uint64(nextID), subtype)
	if err != nil {
		d.logf(wire.SeverityError, "dispatch: NEW_DEVICE(%q): %v", subtype, err)
		return nil, nil
	}

	id := d.Resource.RegisterDevice(uint64(handle))
	d.Resource.SetDeviceFeatures(id, uint32(clientFeatures))

	w := wire.NewWriter()
	w.WriteU64(uint64(id))
	w.WriteU32(uint32(d.ServerFeatures))
	return []wire.Frame{{Opcode: wire.DeviceHandle, Payload: w.Bytes()}}, nil
}
