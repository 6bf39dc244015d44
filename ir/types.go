package ir

import "strings"

// ValueType is a front-end value type.
type ValueType byte

const (
	Void ValueType = iota
	Boolean
	Int
	Long
	Float
	Double
	Address
)

var valueTypeNames = [...]string{
	Void:    "void",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Address: "address",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// ParseValueType maps a type name such as "int" or "address" to a ValueType.
func ParseValueType(name string) (ValueType, bool) {
	for i, n := range valueTypeNames {
		if n == name {
			return ValueType(i), true
		}
	}
	return Void, false
}

// descriptor letters, one per ValueType
const descriptorChars = "VZIJFDA"

// MethodReference identifies a method statically.
type MethodReference struct {
	ClassName string
	Name      string
	Params    []ValueType
	Result    ValueType
}

// NewMethodReference builds a reference.
func NewMethodReference(class, name string, result ValueType, params ...ValueType) MethodReference {
	return MethodReference{ClassName: class, Name: name, Params: params, Result: result}
}

// Descriptor returns the parameter/result encoding, e.g. "(AI)V".
func (r MethodReference) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range r.Params {
		b.WriteByte(descriptorChars[p])
	}
	b.WriteByte(')')
	b.WriteByte(descriptorChars[r.Result])
	return b.String()
}

// SimpleClassName returns the class name after the last dot.
func (r MethodReference) SimpleClassName() string {
	if i := strings.LastIndexByte(r.ClassName, '.'); i >= 0 {
		return r.ClassName[i+1:]
	}
	return r.ClassName
}

// Is reports whether r names member of class, ignoring the descriptor.
func (r MethodReference) Is(class, member string) bool {
	return r.ClassName == class && r.Name == member
}

// Equal compares class, name and descriptor.
func (r MethodReference) Equal(o MethodReference) bool {
	return r.ClassName == o.ClassName && r.Name == o.Name && r.Descriptor() == o.Descriptor()
}

func (r MethodReference) String() string {
	return r.ClassName + "." + r.Name + r.Descriptor()
}
