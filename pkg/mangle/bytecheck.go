package mangle

import "reflect"

// PointerFree reports whether T contains no pointers at any depth: no
// pointers, slices, strings, maps, channels, functions or interfaces, down
// through every array element and struct field. Values of such types are
// plain bytes that can be copied, masked and discarded freely. Box requires
// this; a masked pointer is invisible garbage to the garbage collector, so
// pointerful types get the weaker AnyBox contract instead.
func PointerFree[T any]() bool {
	return pointerFree(reflect.TypeOf((*T)(nil)).Elem())
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointer, UnsafePointer, Slice, String, Map, Chan, Func, Interface.
		return false
	}
}
