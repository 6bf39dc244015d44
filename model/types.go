package model

// ValType is a low-level value type.
type ValType byte

const (
	None ValType = iota // no value; a void result
	I32
	I64
	F32
	F64
)

func (t ValType) String() string {
	switch t {
	case None:
		return "none"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// Size returns the width of the type in bytes, 0 for None.
func (t ValType) Size() int {
	switch t {
	case I32, F32:
		return 4
	case I64, F64:
		return 8
	default:
		return 0
	}
}

// Signature is a parameter and result list, used for call_indirect and
// for deduplicating function types during emission.
type Signature struct {
	Params []ValType
	Result ValType
}

// Equal reports whether both signatures have identical shapes.
func (s Signature) Equal(o Signature) bool {
	if s.Result != o.Result || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	b := make([]byte, 0, 16)
	b = append(b, '(')
	for i, p := range s.Params {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, p.String()...)
	}
	b = append(b, ") -> "...)
	b = append(b, s.Result.String()...)
	return string(b)
}
