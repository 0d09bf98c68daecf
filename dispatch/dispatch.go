// Package dispatch implements the protocol dispatcher: it decodes one
// opcode's payload, drives the render-device adapter, consults the resource
// manager for handle translation, and produces zero or more reply frames.
// Handlers are registered in a table built once at construction, keyed by
// wire.Opcode, so adding an opcode is an addition to the table rather than
// a new arm threaded into a growing switch.
package dispatch

import (
	"fmt"

	"github.com/lumenforge/renderbridge/compress"
	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/resource"
	"github.com/lumenforge/renderbridge/wire"
)

// FatalError signals a dispatcher condition the failure policy does not
// allow logging past — currently only a GET_PROPERTY or GET_*_INFO request
// for DATA_TYPE_LIST, which has no property/subtype/parameter description to
// report. Returning this from Handle tells the caller to tear the
// connection down, unlike every other error here which is logged and
// swallowed.
type FatalError struct {
	Opcode wire.Opcode
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("dispatch: fatal: %s (%s)", e.Reason, e.Opcode)
}

// handlerFunc decodes one message's payload and returns the reply frames
// (nil for opcodes with no wire reply) to post to the connection's work
// queue, in order.
type handlerFunc func(d *Dispatcher, r *wire.Reader) ([]wire.Frame, error)

var handlers = map[wire.Opcode]handlerFunc{
	wire.NewDevice:         handleNewDevice,
	wire.NewObject:         handleNewObject,
	wire.NewArray:          handleNewArray,
	wire.SetParam:          handleSetParam,
	wire.UnsetParam:        handleUnsetParam,
	wire.UnsetAllParams:    handleUnsetAllParams,
	wire.CommitParams:      handleCommitParams,
	wire.Release:           handleRelease,
	wire.Retain:            handleRetain,
	wire.MapArray:          handleMapArray,
	wire.UnmapArray:        handleUnmapArray,
	wire.RenderFrame:       handleRenderFrame,
	wire.FrameReady:        handleFrameReady,
	wire.GetProperty:       handleGetProperty,
	wire.GetObjectSubtypes: handleGetObjectSubtypes,
	wire.GetObjectInfo:     handleGetObjectInfo,
	wire.GetParameterInfo:  handleGetParameterInfo,
}

// Dispatcher is a per-connection, stateful driver: it owns the resource
// manager for the connection's session and calls into one loaded library's
// render device. It is touched only by the connection's reader goroutine,
// so it is not safe for concurrent use.
type Dispatcher struct {
	Resource *resource.Manager
	Library  device.Library
	Device   device.RenderDevice
	Status   device.StatusFunc

	// ServerFeatures is this build's own compression capability set,
	// advertised back to the client in every DEVICE_HANDLE reply.
	ServerFeatures compress.Features

	JPEG   compress.JPEGEncoder
	Snappy compress.SnappyEncoder
}

// New returns a Dispatcher backed by lib, reporting status through status.
func New(lib device.Library, status device.StatusFunc) *Dispatcher {
	if status == nil {
		status = func(wire.Severity, string) {}
	}
	return &Dispatcher{
		Resource:       resource.NewManager(),
		Library:        lib,
		Device:         lib.RenderDevice(),
		Status:         status,
		ServerFeatures: compress.ServerFeatures(),
	}
}

// Handle decodes and runs one message, returning the reply frames to post
// to the connection's work queue (possibly none) in order. A non-nil error
// is always a *FatalError; every other failure is logged through d.Status
// and reported as (nil, nil), so one malformed or unknown message never
// tears down the connection on its own.
func (d *Dispatcher) Handle(f wire.Frame) ([]wire.Frame, error) {
	h, ok := handlers[f.Opcode]
	if !ok {
		d.logf(wire.SeverityError, "dispatch: unknown opcode %s, dropping message", f.Opcode)
		return nil, nil
	}
	r := wire.NewReader(f.Payload)
	frames, err := h(d, r)
	if err != nil {
		if fe, ok := err.(*FatalError); ok {
			return nil, fe
		}
		d.logf(wire.SeverityError, "dispatch: %s: %v", f.Opcode, err)
		return nil, nil
	}
	return frames, nil
}

func (d *Dispatcher) logf(sev wire.Severity, format string, args ...any) {
	d.Status(sev, fmt.Sprintf(format, args...))
}

// lookupDevice resolves a device id, logging (not erroring) if unknown — a
// missing device handle on any device-addressed opcode is logged and the
// message is dropped rather than torn down.
func (d *Dispatcher) lookupDevice(id resource.ObjectID) (device.Handle, bool) {
	h, ok := d.Resource.Device(id)
	if !ok {
		d.logf(wire.SeverityError, "dispatch: unknown device id %d", id)
		return 0, false
	}
	return device.Handle(h), true
}

// lookupObject resolves id under dev. Client-chosen object ids are scoped
// per device, so both must be supplied together — a lookup against the
// wrong device id behaves exactly like an unknown id.
func (d *Dispatcher) lookupObject(dev, id resource.ObjectID) (device.Handle, bool) {
	h, ok := d.Resource.Object(dev, id)
	if !ok {
		d.logf(wire.SeverityError, "dispatch: unknown object id %d on device %d", id, dev)
		return 0, false
	}
	return device.Handle(h), true
}
