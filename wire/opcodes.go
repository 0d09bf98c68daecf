// Package wire implements the framing and typed payload codec for the
// remote rendering bridge protocol: <u32 opcode><u32 length><payload>.
package wire

import "fmt"

// Opcode identifies the kind of message carried by a frame. Values are
// stable for the lifetime of the protocol; client and server must agree on
// them.
type Opcode uint32

// Opcode table, in protocol definition order.
const (
	NewDevice Opcode = iota
	DeviceHandle
	NewObject
	NewArray
	SetParam
	UnsetParam
	UnsetAllParams
	CommitParams
	Release
	Retain
	MapArray
	ArrayMapped
	UnmapArray
	ArrayUnmapped
	RenderFrame
	FrameReady
	FrameIsReady
	ChannelColor
	ChannelDepth
	GetProperty
	Property
	GetObjectSubtypes
	ObjectSubtypes
	GetObjectInfo
	ObjectInfo
	GetParameterInfo
	ParameterInfo
)

var opcodeNames = map[Opcode]string{
	NewDevice:         "NEW_DEVICE",
	DeviceHandle:      "DEVICE_HANDLE",
	NewObject:         "NEW_OBJECT",
	NewArray:          "NEW_ARRAY",
	SetParam:          "SET_PARAM",
	UnsetParam:        "UNSET_PARAM",
	UnsetAllParams:    "UNSET_ALL_PARAMS",
	CommitParams:      "COMMIT_PARAMS",
	Release:           "RELEASE",
	Retain:            "RETAIN",
	MapArray:          "MAP_ARRAY",
	ArrayMapped:       "ARRAY_MAPPED",
	UnmapArray:        "UNMAP_ARRAY",
	ArrayUnmapped:     "ARRAY_UNMAPPED",
	RenderFrame:       "RENDER_FRAME",
	FrameReady:        "FRAME_READY",
	FrameIsReady:      "FRAME_IS_READY",
	ChannelColor:      "CHANNEL_COLOR",
	ChannelDepth:      "CHANNEL_DEPTH",
	GetProperty:       "GET_PROPERTY",
	Property:          "PROPERTY",
	GetObjectSubtypes: "GET_OBJECT_SUBTYPES",
	ObjectSubtypes:    "OBJECT_SUBTYPES",
	GetObjectInfo:     "GET_OBJECT_INFO",
	ObjectInfo:        "OBJECT_INFO",
	GetParameterInfo:  "GET_PARAMETER_INFO",
	ParameterInfo:     "PARAMETER_INFO",
}

// String renders the opcode's symbolic name for logging.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE(%d)", uint32(o))
}

// DefaultPort is the TCP port the bridge listens on when none is given.
const DefaultPort = 31050
