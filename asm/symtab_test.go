package asm

import "testing"

// TestSymbolTableOrderIndependence is invariant 7 of spec.md §8: resolving a
// set of mutually-referencing .def symbols gives the same result regardless
// of the order they were defined in.
func TestSymbolTableOrderIndependence(t *testing.T) {
	build := func(order [][2]string) (map[string]int64, error) {
		st := NewSymbolTable()
		for _, kv := range order {
			if err := st.Add(kv[0], NewExpression(tokenize(kv[1]))); err != nil {
				return nil, err
			}
		}
		if err := st.Resolve(); err != nil {
			return nil, err
		}
		out := map[string]int64{}
		for k, v := range st.resolvedValues() {
			out[k] = v
		}
		return out, nil
	}

	forward := [][2]string{
		{"A", "1"},
		{"B", "A + 1"},
		{"C", "B * 2"},
	}
	backward := [][2]string{
		{"C", "B * 2"},
		{"B", "A + 1"},
		{"A", "1"},
	}

	gotForward, err := build(forward)
	if err != nil {
		t.Fatalf("forward order: %v", err)
	}
	gotBackward, err := build(backward)
	if err != nil {
		t.Fatalf("backward order: %v", err)
	}

	for _, name := range []string{"A", "B", "C"} {
		if gotForward[name] != gotBackward[name] {
			t.Errorf("symbol %s resolved differently by order: forward=%d backward=%d", name, gotForward[name], gotBackward[name])
		}
	}
	if gotBackward["C"] != 4 {
		t.Errorf("C = %d, want 4", gotBackward["C"])
	}
}

func TestSymbolTableUnresolvable(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Add("A", NewExpression(tokenize("B + 1"))); err != nil {
		t.Fatal(err)
	}
	err := st.Resolve()
	if err == nil {
		t.Fatal("expected an unresolved-symbol error")
	}
	asmErr, ok := err.(*Error)
	if !ok || asmErr.Kind != KindUnresolvedSymbol {
		t.Errorf("error = %v, want KindUnresolvedSymbol", err)
	}
}

func TestSymbolTableDuplicateDefinition(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Add("A", ConstExpression(1)); err != nil {
		t.Fatal(err)
	}
	if err := st.Add("A", ConstExpression(2)); err == nil {
		t.Fatal("expected an error redefining A")
	}
}
