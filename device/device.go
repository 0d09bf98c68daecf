// Package device defines the narrow capability-set the rendering bridge
// calls into. It is an external contract by design: the bridge never
// constructs scene semantics itself, only forwards to whatever RenderDevice
// is wired in. Swapping the concrete device (a cgo binding to a real
// rendering library, a mock for tests) never touches dispatch, resource, or
// frame — only the device.Library that produces it.
package device

import "github.com/lumenforge/renderbridge/wire"

// Handle is an opaque, device-native identifier — an object handle, a
// device handle, or a frame handle. It is always exactly 8 bytes on the
// wire; representing it as uint64 makes that a static fact instead of a
// runtime assumption to assert.
type Handle uint64

// StatusFunc receives asynchronous status messages from a device — errors,
// warnings, and (when the caller opts in) performance/info/debug chatter.
// It is passed explicitly to a Loader (or a library constructor such as
// stub.NewLibrary) rather than held in a package-level variable, so a process that loads more than one library
// never has their status callbacks cross-talk.
type StatusFunc func(severity wire.Severity, message string)

// Library loads a named rendering backend and mints devices from it. There
// is exactly one Library per running server process.
type Library interface {
	// NewDevice constructs a device of the given subtype (e.g. a vendor or
	// backend name). The subtype string is opaque to the bridge; it is
	// passed straight to the underlying rendering library. id is the
	// client-visible device id the resource manager is about to assign to
	// the returned handle — most backends ignore it, but it lets a test
	// adapter mint a handle that is a deterministic function of the id.
	NewDevice(id uint64, subtype string) (Handle, error)

	// RenderDevice returns the single RenderDevice backing every handle
	// this Library mints. One real rendering library backs every device it
	// creates with the same loaded backend, so there is one RenderDevice
	// per Library, not one per device.
	RenderDevice() RenderDevice

	// Close releases the library. Most backends are process-lifetime and
	// treat this as a no-op; required for backends that hold OS resources.
	Close() error
}

// Loader loads a Library by name, installing onStatus as the status
// callback for every device the library subsequently mints.
type Loader func(name string, onStatus StatusFunc) (Library, error)

// RenderDevice is the full set of rendering-API operations the dispatcher
// needs. A concrete implementation owns translating these calls into
// whatever the real rendering library requires; the bridge only ever sees
// this interface.
type RenderDevice interface {
	// NewObject constructs an object of the given type/subtype on dev. id is
	// the client-chosen object id the resource manager will register the
	// returned handle under (see Library.NewDevice for why this is passed).
	// Implementations return a zero Handle (not an error) for an unknown
	// type — NEW_OBJECT has no wire reply, so there is nothing to report
	// an error through.
	NewObject(dev Handle, id uint64, objType wire.ObjectType, subtype string) Handle

	// NewArray1D/2D/3D construct an array of the given rank. data, if
	// non-nil, seeds the array's initial contents (already handle-translated
	// by the caller when the element type is object-kind).
	NewArray1D(dev Handle, id uint64, elementType wire.DataType, n1 uint64, data []byte) Handle
	NewArray2D(dev Handle, id uint64, elementType wire.DataType, n1, n2 uint64, data []byte) Handle
	NewArray3D(dev Handle, id uint64, elementType wire.DataType, n1, n2, n3 uint64, data []byte) Handle

	SetParameter(dev, obj Handle, name string, t wire.DataType, value []byte)
	UnsetParameter(dev, obj Handle, name string)
	UnsetAllParameters(dev, obj Handle)
	CommitParameters(dev, target Handle)

	Retain(dev, obj Handle)
	Release(dev, obj Handle)

	// MapArray returns the array's full backing bytes. UnmapArray must be
	// called before the array is mapped again.
	MapArray(dev, arr Handle) []byte
	UnmapArray(dev, arr Handle)

	RenderFrame(dev, frame Handle)
	// FrameReady blocks (if mask requires it) until the frame satisfies
	// mask, returning whether it is ready.
	FrameReady(dev, frame Handle, mask wire.WaitMask) bool

	// MapFrameChannel returns the named channel's pixels plus its
	// dimensions and element type. A nil slice or wire.TypeUnknown
	// signals "channel not produced this frame".
	MapFrameChannel(dev, frame Handle, channel string) (data []byte, width, height uint32, elementType wire.DataType)

	GetProperty(dev, obj Handle, name string, t wire.DataType, size uint64, mask wire.WaitMask) (value []byte, found bool)
	GetObjectSubtypes(dev Handle, objType wire.ObjectType) []string
	GetObjectInfo(dev Handle, objType wire.ObjectType, subtype, infoName string, infoType wire.DataType) (value []byte, found bool)
	GetParameterInfo(dev Handle, objType wire.ObjectType, subtype, paramName string, paramType wire.DataType, infoName string, infoType wire.DataType) (value []byte, found bool)
}

// Channel names the frame streamer queries every RENDER_FRAME.
const (
	ChannelColor = "channel.color"
	ChannelDepth = "channel.depth"
)
