package format

import (
	"fmt"
	"reflect"
	"strings"
)

// Verbs fmt accepts per argument kind; %v and %T accept anything
const (
	boolVerbs    = "t"
	intVerbs     = "bcdoOqxXU"
	floatVerbs   = "beEfFgGxX"
	stringVerbs  = "sqxX"
	pointerVerbs = "bdoxXp"
)

func isInteger(arg any) bool {
	switch reflect.ValueOf(arg).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// accepts reports whether fmt renders arg under verb without an error marker
func accepts(verb byte, arg any) bool {
	if verb == 'v' || verb == 'T' {
		return true
	}
	return valueAccepts(verb, reflect.ValueOf(arg), 0)
}

// valueAccepts follows fmt's printValue: composites apply the verb to each
// element, and pointers are followed only at the top level.
func valueAccepts(verb byte, v reflect.Value, depth int) bool {
	if verb == 'v' {
		return true
	}
	if !v.IsValid() {
		return false
	}
	if v.CanInterface() {
		switch v.Interface().(type) {
		case fmt.Formatter:
			return true
		case error, fmt.Stringer:
			if strings.IndexByte(stringVerbs, verb) >= 0 {
				return true
			}
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		return strings.IndexByte(boolVerbs, verb) >= 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strings.IndexByte(intVerbs, verb) >= 0
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return strings.IndexByte(floatVerbs, verb) >= 0
	case reflect.String:
		return strings.IndexByte(stringVerbs, verb) >= 0
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && verb == 'p' {
			return true
		}
		if v.Type().Elem().Kind() == reflect.Uint8 && strings.IndexByte(stringVerbs, verb) >= 0 {
			return true
		}
		for i := 0; i < v.Len(); i++ {
			if !valueAccepts(verb, v.Index(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Map:
		if verb == 'p' {
			return true
		}
		iter := v.MapRange()
		for iter.Next() {
			if !valueAccepts(verb, iter.Key(), depth+1) || !valueAccepts(verb, iter.Value(), depth+1) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !valueAccepts(verb, v.Field(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Interface:
		// nested nil renders as <nil> under any verb
		if v.IsNil() {
			return true
		}
		return valueAccepts(verb, v.Elem(), depth)
	case reflect.Pointer:
		if depth == 0 && !v.IsNil() && verb != 'p' {
			switch v.Elem().Kind() {
			case reflect.Array, reflect.Slice, reflect.Struct, reflect.Map:
				return valueAccepts(verb, v.Elem(), depth+1)
			}
		}
		return strings.IndexByte(pointerVerbs, verb) >= 0
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return strings.IndexByte(pointerVerbs, verb) >= 0
	default:
		return false
	}
}
