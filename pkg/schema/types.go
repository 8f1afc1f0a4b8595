package schema

// OutputKind is the kind of value a graph node produces when materialized.
// Fixed at node construction; drives both statement shape (assignment vs.
// bare call) and the marshalling strategy.
type OutputKind int

const (
	KindNone OutputKind = iota
	KindScalar
	KindMatrix
	KindFrame
)

func (k OutputKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScalar:
		return "scalar"
	case KindMatrix:
		return "matrix"
	case KindFrame:
		return "frame"
	default:
		return "invalid"
	}
}

// ValueType is the engine's primitive element type code. The numeric values
// are part of the cross-boundary result contract and must not be reordered.
type ValueType int64

const (
	SI8 ValueType = iota
	SI32
	SI64
	UI8
	UI32
	UI64
	F32
	F64
)

// valueTypeNames maps codes to the names used in DSL source and sidecar
// metadata files.
var valueTypeNames = map[ValueType]string{
	SI8:  "si8",
	SI32: "si32",
	SI64: "si64",
	UI8:  "ui8",
	UI32: "ui32",
	UI64: "ui64",
	F32:  "f32",
	F64:  "f64",
}

func (v ValueType) String() string {
	if name, ok := valueTypeNames[v]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether v is a known value type code.
func (v ValueType) Valid() bool {
	_, ok := valueTypeNames[v]
	return ok
}

// Size returns the element width in bytes.
func (v ValueType) Size() int {
	switch v {
	case SI8, UI8:
		return 1
	case SI32, UI32, F32:
		return 4
	case SI64, UI64, F64:
		return 8
	default:
		return 0
	}
}

// ParseValueType resolves a metadata type name ("f64", "si32", ...) to its
// code.
func ParseValueType(name string) (ValueType, error) {
	for vt, n := range valueTypeNames {
		if n == name {
			return vt, nil
		}
	}
	return 0, NewErrorf(ErrCodeValueType, "unknown value type name: %q", name)
}
