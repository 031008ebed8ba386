package asm

// SymbolTable holds every named value defined by ".def" directives and
// labels, in definition order, and resolves them to integers by repeated
// passes -- a symbol's expression may reference a symbol defined later in
// the source, so resolution can't be done in a single top-to-bottom sweep.
// This mirrors original_source/rtl/asm.py's SymbolTable.resolve: keep
// re-evaluating every still-unresolved expression until a pass makes no
// progress, then fail on whatever's left (spec.md §8 invariant 7 requires
// this to be independent of definition order).
type SymbolTable struct {
	order    []string
	exprs    map[string]*Expression
	resolved map[string]int64
	done     bool
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{exprs: map[string]*Expression{}, resolved: map[string]int64{}}
}

// Add defines a new symbol. Redefining an existing name is always an error.
func (t *SymbolTable) Add(name string, expr *Expression) error {
	if _, exists := t.exprs[name]; exists {
		return newError(KindOverlappingDefinition, 0, "symbol %q is already defined", name)
	}
	t.order = append(t.order, name)
	t.exprs[name] = expr
	t.done = false
	return nil
}

// resolvedValues exposes the fully resolved symbol map for Expression.Eval.
// Callers must have called Resolve first; this package always does.
func (t *SymbolTable) resolvedValues() map[string]int64 {
	return t.resolved
}

// Resolve runs the fix-point resolution pass described above. It is
// idempotent and cheap to call again once already resolved.
func (t *SymbolTable) Resolve() error {
	if t.done {
		return nil
	}

	pending := map[string]*Expression{}
	for name, expr := range t.exprs {
		if v, err := expr.Eval(t.resolved); err == nil {
			t.resolved[name] = v
		} else {
			pending[name] = expr
		}
	}

	for len(pending) > 0 {
		progressed := false
		for name, expr := range pending {
			v, err := expr.Eval(t.resolved)
			if err != nil {
				continue
			}
			t.resolved[name] = v
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for _, name := range t.order {
			if _, ok := pending[name]; ok {
				names = append(names, name)
			}
		}
		return newError(KindUnresolvedSymbol, 0, "can't resolve symbol(s) %v", names)
	}

	t.done = true
	return nil
}
