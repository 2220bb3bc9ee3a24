package mangle

import "testing"

func TestPointerFree(t *testing.T) {
	type scalarPair struct {
		A int32
		B float64
	}
	type nested struct {
		Pair  scalarPair
		Grid  [4][4]uint8
		Count uintptr
	}
	type leakyDeep struct {
		Pair scalarPair
		Name string
	}

	t.Run("pointer-free types", func(t *testing.T) {
		checks := map[string]bool{
			"bool":       PointerFree[bool](),
			"int":        PointerFree[int](),
			"uint8":      PointerFree[uint8](),
			"uintptr":    PointerFree[uintptr](),
			"float32":    PointerFree[float32](),
			"complex128": PointerFree[complex128](),
			"[32]byte":   PointerFree[[32]byte](),
			"struct":     PointerFree[scalarPair](),
			"nested":     PointerFree[nested](),
			"empty":      PointerFree[struct{}](),
		}
		for name, ok := range checks {
			if !ok {
				t.Errorf("%s reported pointerful", name)
			}
		}
	})

	t.Run("pointerful types", func(t *testing.T) {
		checks := map[string]bool{
			"*int":         PointerFree[*int](),
			"string":       PointerFree[string](),
			"[]byte":       PointerFree[[]byte](),
			"map":          PointerFree[map[string]int](),
			"chan":         PointerFree[chan int](),
			"func":         PointerFree[func()](),
			"interface":    PointerFree[any](),
			"deep field":   PointerFree[leakyDeep](),
			"[3]*int":      PointerFree[[3]*int](),
			"array of str": PointerFree[[2]string](),
		}
		for name, ok := range checks {
			if ok {
				t.Errorf("%s reported pointer-free", name)
			}
		}
	})
}
