package fiobj

import "strconv"

// Kind is the type discriminant carried by every object.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindNumber
	KindString
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindNumber:
		return "NUMBER"
	case KindString:
		return "STRING"
	case KindSymbol:
		return "SYMBOL"
	default:
		return "INVALID"
	}
}

// Object is any value of the object system.
type Object interface {
	Kind() Kind
}

// KindOf returns the discriminant of o, KindInvalid for a nil object.
func KindOf(o Object) Kind {
	if o == nil {
		return KindInvalid
	}
	return o.Kind()
}

type nullObject struct{}

func (nullObject) Kind() Kind     { return KindNull }
func (nullObject) String() string { return "null" }

// Null is the null object.
var Null Object = nullObject{}

// Number is a numeric object.
type Number float64

func (Number) Kind() Kind { return KindNumber }

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String is a plain byte-string object. It carries no fingerprint and never
// compares equal to a Symbol, even with identical content.
type String struct {
	b []byte
}

// NewString copies s into a new String object.
func NewString(s string) *String {
	return &String{b: []byte(s)}
}

func (*String) Kind() Kind { return KindString }

func (s *String) String() string { return string(s.b) }

func (s *String) Len() int { return len(s.b) }
