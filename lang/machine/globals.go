package machine

import (
	"github.com/dolthub/swiss"

	"github.com/mna/lumen/lang/value"
)

// globals is the VM's global variable table. Unlike instance fields
// and class methods, which reuse value.Table (open-addressed, keyed by
// reference, since they are per-object and usually small), the global
// table is VM-wide and potentially large, so it is backed by a
// swiss-table map for its better average-case probe behavior.
type globals struct {
	m *swiss.Map[*value.String, value.Value]
}

func newGlobals() *globals {
	return &globals{m: swiss.NewMap[*value.String, value.Value](32)}
}

func (g *globals) get(name *value.String) (value.Value, bool) {
	return g.m.Get(name)
}

func (g *globals) set(name *value.String, v value.Value) {
	g.m.Put(name, v)
}

// setIfExists assigns only if name is already defined, reporting
// whether it was. It backs OP_SET_GLOBAL, which must not silently
// create new globals on assignment to an undefined name.
func (g *globals) setIfExists(name *value.String, v value.Value) bool {
	if _, ok := g.m.Get(name); !ok {
		return false
	}
	g.m.Put(name, v)
	return true
}

// each calls fn for every global, for the GC root walk.
func (g *globals) each(fn func(name *value.String, v value.Value)) {
	it := g.m.Iter()
	for it.Next() {
		k, v := it.Pair()
		fn(k, v)
	}
}
