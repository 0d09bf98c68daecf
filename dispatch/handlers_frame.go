package dispatch

import (
	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/frame"
	"github.com/lumenforge/renderbridge/resource"
	"github.com/lumenforge/renderbridge/wire"
)

// handleRenderFrame implements RENDER_FRAME ⇒ <u64 device_id><u64 frame_id>.
// frame_id is the object id of the frame object created earlier via
// NEW_OBJECT(type=FRAME). It renders, blocks on frame_ready, then runs the
// frame streamer and emits CHANNEL_COLOR/CHANNEL_DEPTH messages in that
// fixed order, contiguous, for exactly the channels actually produced.
func handleRenderFrame(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	frameID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}

	devHandle, ok := d.lookupDevice(resource.ObjectID(deviceID))
	if !ok {
		return nil, nil
	}
	frameHandle, ok := d.lookupObject(resource.ObjectID(deviceID), resource.ObjectID(frameID))
	if !ok {
		return nil, nil
	}

	d.Device.RenderFrame(devHandle, frameHandle)
	d.Device.FrameReady(devHandle, frameHandle, wire.WaitUntilReady)

	clientFeatures, _ := d.Resource.DeviceFeatures(resource.ObjectID(deviceID))
	negotiated := compress.Negotiate(compress.Features(clientFeatures), d.ServerFeatures)

	msgs := frame.Stream(d.Device, devHandle, frameHandle, frameID, negotiated, d.JPEG, d.Snappy)
	frames := make([]wire.Frame, len(msgs))
	for i, m := range msgs {
		frames[i] = wire.Frame{Opcode: m.Opcode, Payload: m.Payload}
	}
	return frames, nil
}

// handleFrameReady implements FRAME_READY ⇒
// <u64 device_id><u64 object_id><u32 wait_mask>; reply FRAME_IS_READY ⇒
// <u64 object_id>.
func handleFrameReady(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error) {
	deviceID, objectID, ok, err := readDeviceObjectPair(d, r)
	if err != nil || !ok {
		return nil, err
	}
	mask, err := r.ReadWaitMask()
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

	d.Device.FrameReady(devHandle, objHandle, mask)

	w := wire.NewWriter()
	w.WriteU64(uint64(objectID))
	return []wire.Frame{{Opcode: wire.FrameIsReady, Payload: w.Bytes()}}, nil
}
