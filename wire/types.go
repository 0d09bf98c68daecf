package wire

// DataType tags every typed value that crosses the wire: object references,
// POD parameter values, and a handful of meta-types (string, string list,
// parameter list). Object-kind values are a closed, contiguous block at the
// low end so IsObject is a cheap range check — mirroring the rendering
// API's own ANARIDataType design, where object subtypes and POD types share
// one enumeration.
type DataType uint32

const (
	TypeUnknown DataType = iota

	// Object-kind tags. A DataType in this block denotes an 8-byte handle
	// on the wire (client object_id) that the resource manager translates
	// to a device-native handle before it reaches device.RenderDevice.
	TypeLight
	TypeCamera
	TypeGeometry
	TypeSpatialField
	TypeSurface
	TypeVolume
	TypeMaterial
	TypeSampler
	TypeGroup
	TypeInstance
	TypeWorld
	TypeFrame
	TypeRenderer
	TypeArray1D
	TypeArray2D
	TypeArray3D
	TypeDevice
	TypeObject // generic "some object", used when the exact kind doesn't matter

	objectKindSentinel // exclusive upper bound of the object-kind block

	// Scalar / POD types.
	TypeBool
	TypeUInt8
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat32
	TypeUFixed8RGBASRGB // 8-bit sRGB RGBA, the only layout the color codec understands

	// Meta-types, used only in GET_PROPERTY / GET_OBJECT_INFO / GET_PARAMETER_INFO replies.
	TypeString
	TypeStringList
	TypeParameterList
	TypeDataTypeList
)

// ObjectType is the same enumeration as DataType, restricted by convention
// to the object-kind block. It exists as a distinct name because the wire
// protocol treats "object_type" and "data_type" as separate tags, even
// though both share one closed set of numeric values here (as the
// rendering API this bridge fronts does internally).
type ObjectType = DataType

// IsObject reports whether t denotes an object reference (an 8-byte handle
// on the wire), as opposed to a POD value or meta-type.
func (t DataType) IsObject() bool {
	return t > TypeUnknown && t < objectKindSentinel
}

// SizeOf returns the number of bytes a single value of t occupies in a
// SET_PARAM payload or an array element slot. It returns 0 for variable
// length / meta-types (string, string list, parameter list, unknown) —
// callers must special-case those.
func (t DataType) SizeOf() int {
	if t.IsObject() {
		return 8
	}
	switch t {
	case TypeBool, TypeUInt8:
		return 1
	case TypeInt32, TypeUInt32, TypeFloat32, TypeUFixed8RGBASRGB:
		return 4
	case TypeInt64, TypeUInt64:
		return 8
	default:
		return 0
	}
}

// Severity classifies a status-callback message from the render device.
// Values are ordered from most to least critical; each prints as a short
// upper-case tag (callers add any brackets).
type Severity uint32

const (
	SeverityFatal Severity = iota
	SeverityError
	SeverityWarning
	SeverityPerformance
	SeverityInfo
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "FATAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	case SeverityPerformance:
		return "PERF"
	case SeverityInfo:
		return "INFO"
	case SeverityDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Parameter is one entry of a parameter_list payload: a named, typed
// parameter description as returned by GET_OBJECT_INFO/GET_PARAMETER_INFO.
type Parameter struct {
	Name string
	Type DataType
}

// WaitMask controls how much of a frame must be complete before
// FRAME_READY/RENDER_FRAME return, matching the rendering API's own
// wait-mask semantics.
type WaitMask uint32

const (
	WaitNone WaitMask = iota
	WaitUntilReady
)
