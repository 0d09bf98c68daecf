// Package stub provides a deterministic device.RenderDevice/device.Library
// pair with no external rendering backend: every handle it mints is
// 0xA000+id, so a test can predict a handle from the id it registered
// without reading it back. It is the default device for
// renderbridge-server when no real backend is configured, and the adapter
// every dispatch test runs against.
package stub

import (
	"fmt"
	"sync"

	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/wire"
)

const handleBase = 0xA000

// Library mints device handles that echo 0xA000+id and hands every one of
// them off to a single shared Device — mirroring how one real rendering
// library backs every device it creates with the same loaded backend.
type Library struct {
	onStatus device.StatusFunc
	dev      *Device
}

// NewLibrary returns a Library that reports device status through onStatus.
func NewLibrary(onStatus device.StatusFunc) *Library {
	if onStatus == nil {
		onStatus = func(wire.Severity, string) {}
	}
	return &Library{onStatus: onStatus, dev: NewDevice()}
}

func (l *Library) NewDevice(id uint64, subtype string) (device.Handle, error) {
	h := device.Handle(handleBase + id)
	l.onStatus(wire.SeverityInfo, fmt.Sprintf("stub: new device %q -> handle %#x", subtype, h))
	return h, nil
}

func (l *Library) Close() error { return nil }

// RenderDevice returns the single device.RenderDevice backing every handle
// this Library mints.
func (l *Library) RenderDevice() device.RenderDevice { return l.dev }

// Object is a stub-minted object: it remembers only what a SET_PARAM /
// GET_PROPERTY round trip needs to be checkable (its type, its parameters,
// and — if it is an array — its raw bytes).
type Object struct {
	Type       wire.ObjectType
	Subtype    string
	Params     map[string][]byte
	ParamTypes map[string]wire.DataType

	// array-only fields
	isArray     bool
	elementType wire.DataType
	n1, n2, n3  uint64
	data        []byte
	mapped      bool
}

// Frame is a stub-rendered frame: a fixed-size synthetic color/depth pair,
// enough for compress and viewer tests to exercise the real encode path
// without a rendering backend.
type Frame struct {
	Width, Height uint32
	color         []byte // width*height*4 (UFixed8RGBASRGB)
	depth         []byte // width*height*4 (Float32)
	ready         bool
}

// Device is an identity-ish mock rendering device: SET_PARAM values are
// retrievable verbatim via GetProperty, arrays echo their seed data, and
// RenderFrame synthesizes a flat-colored frame.
type Device struct {
	mu      sync.Mutex
	objects map[device.Handle]*Object
	frames  map[device.Handle]*Frame
	refs    map[device.Handle]int
}

// NewDevice constructs a fresh Device. Tests that want a RenderDevice
// without going through Library.NewDevice use this directly.
func NewDevice() *Device {
	return &Device{
		objects: make(map[device.Handle]*Object),
		frames:  make(map[device.Handle]*Frame),
		refs:    make(map[device.Handle]int),
	}
}

func (d *Device) NewObject(dev device.Handle, id uint64, objType wire.ObjectType, subtype string) device.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := device.Handle(handleBase + id)
	d.objects[h] = &Object{
		Type:       objType,
		Subtype:    subtype,
		Params:     make(map[string][]byte),
		ParamTypes: make(map[string]wire.DataType),
	}
	d.refs[h] = 1
	return h
}

func (d *Device) newArray(id uint64, elementType wire.DataType, n1, n2, n3 uint64, data []byte) device.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := device.Handle(handleBase + id)
	buf := make([]byte, len(data))
	copy(buf, data)
	d.objects[h] = &Object{
		Type:        wire.TypeArray1D,
		isArray:     true,
		elementType: elementType,
		n1:          n1, n2: n2, n3: n3,
		data: buf,
	}
	d.refs[h] = 1
	return h
}

func (d *Device) NewArray1D(dev device.Handle, id uint64, elementType wire.DataType, n1 uint64, data []byte) device.Handle {
	return d.newArray(id, elementType, n1, 0, 0, data)
}

func (d *Device) NewArray2D(dev device.Handle, id uint64, elementType wire.DataType, n1, n2 uint64, data []byte) device.Handle {
	return d.newArray(id, elementType, n1, n2, 0, data)
}

func (d *Device) NewArray3D(dev device.Handle, id uint64, elementType wire.DataType, n1, n2, n3 uint64, data []byte) device.Handle {
	return d.newArray(id, elementType, n1, n2, n3, data)
}

func (d *Device) SetParameter(dev, obj device.Handle, name string, t wire.DataType, value []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[obj]
	if !ok {
		return
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	o.Params[name] = buf
	o.ParamTypes[name] = t
}

func (d *Device) UnsetParameter(dev, obj device.Handle, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[obj]; ok {
		delete(o.Params, name)
		delete(o.ParamTypes, name)
	}
}

func (d *Device) UnsetAllParameters(dev, obj device.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[obj]; ok {
		o.Params = make(map[string][]byte)
		o.ParamTypes = make(map[string]wire.DataType)
	}
}

// CommitParameters is a no-op for the stub: there is no deferred scene
// graph to recompute, so commit has nothing to materialize.
func (d *Device) CommitParameters(dev, target device.Handle) {}

func (d *Device) Retain(dev, obj device.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs[obj]++
}

func (d *Device) Release(dev, obj device.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs[obj]--
	if d.refs[obj] <= 0 {
		delete(d.objects, obj)
		delete(d.refs, obj)
	}
}

func (d *Device) MapArray(dev, arr device.Handle) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[arr]
	if !ok || !o.isArray {
		return nil
	}
	o.mapped = true
	return o.data
}

func (d *Device) UnmapArray(dev, arr device.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[arr]; ok {
		o.mapped = false
	}
}

// RenderFrame synthesizes deterministic color and depth planes for frame —
// a flat mid-gray color and an all-zero depth plane — sized from whatever the
// client last set as the frame's "size" parameter (falling back to 64x64).
func (d *Device) RenderFrame(dev, frameHandle device.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	width, height := uint32(64), uint32(64)
	if o, ok := d.objects[frameHandle]; ok {
		if raw, ok := o.Params["size"]; ok && len(raw) >= 8 {
			w := le32(raw[0:4])
			h := le32(raw[4:8])
			if w > 0 && h > 0 {
				width, height = w, h
			}
		}
	}

	color := make([]byte, int(width)*int(height)*4)
	for i := 0; i < len(color); i += 4 {
		color[i], color[i+1], color[i+2], color[i+3] = 128, 128, 128, 255
	}
	depth := make([]byte, int(width)*int(height)*4)

	d.frames[frameHandle] = &Frame{Width: width, Height: height, color: color, depth: depth, ready: true}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// FrameReady never waits: the stub renders synchronously, so a frame is
// ready as soon as RenderFrame has run for it, and never before.
func (d *Device) FrameReady(dev, frameHandle device.Handle, mask wire.WaitMask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.frames[frameHandle]
	return ok && f.ready
}

func (d *Device) MapFrameChannel(dev, frameHandle device.Handle, channel string) ([]byte, uint32, uint32, wire.DataType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.frames[frameHandle]
	if !ok {
		return nil, 0, 0, wire.TypeUnknown
	}
	switch channel {
	case device.ChannelColor:
		return f.color, f.Width, f.Height, wire.TypeUFixed8RGBASRGB
	case device.ChannelDepth:
		return f.depth, f.Width, f.Height, wire.TypeFloat32
	default:
		return nil, 0, 0, wire.TypeUnknown
	}
}

// GetProperty echoes back whatever SetParameter last recorded for name,
// satisfying the SET_PARAM ; GET_PROPERTY round-trip law.
func (d *Device) GetProperty(dev, obj device.Handle, name string, t wire.DataType, size uint64, mask wire.WaitMask) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[obj]
	if !ok {
		return nil, false
	}
	v, ok := o.Params[name]
	return v, ok
}

// GetObjectSubtypes returns a small fixed catalog per object type, enough
// for a GET_OBJECT_SUBTYPES round trip to have something non-empty to
// return without modeling a real rendering library's plugin registry.
func (d *Device) GetObjectSubtypes(dev device.Handle, objType wire.ObjectType) []string {
	switch objType {
	case wire.TypeCamera:
		return []string{"perspective", "orthographic"}
	case wire.TypeRenderer:
		return []string{"default"}
	default:
		return nil
	}
}

func (d *Device) GetObjectInfo(dev device.Handle, objType wire.ObjectType, subtype, infoName string, infoType wire.DataType) ([]byte, bool) {
	return nil, false
}

func (d *Device) GetParameterInfo(dev device.Handle, objType wire.ObjectType, subtype, paramName string, paramType wire.DataType, infoName string, infoType wire.DataType) ([]byte, bool) {
	return nil, false
}

var _ device.RenderDevice = (*Device)(nil)
var _ device.Library = (*Library)(nil)
