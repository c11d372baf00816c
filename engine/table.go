package engine

// SearchMode selects the route table's storage and lookup strategy.
type SearchMode int

const (
	// SearchDynamic stores routes as an ordered sequence scanned linearly
	// on lookup. Registration order is the tie-break for overlapping
	// patterns; parameters and wildcards are supported.
	SearchDynamic SearchMode = iota

	// SearchStatic stores routes in a map keyed by the exact normalized
	// path. Lookup is a single exact-match probe; parameters and
	// wildcards never match in this mode.
	SearchStatic
)

// String returns the config-file name of the search mode.
func (m SearchMode) String() string {
	if m == SearchStatic {
		return "static"
	}
	return "dynamic"
}

// routeTable abstracts the route storage so a synchronized implementation
// can be substituted without touching the dispatcher. Exactly one table is
// active per engine; tables are replaced wholesale on a mode switch.
type routeTable interface {
	// get returns the route registered under the exact normalized path.
	get(path string) (*Route, bool)

	// add registers a route. The caller guarantees the path is not
	// already present.
	add(rt *Route)

	// lookup finds the first route whose pattern matches the request
	// path and which serves the method (exactly or via MethodAll),
	// returning the route and its parameter bindings.
	lookup(path, method string) (*Route, map[string]string, bool)

	// routes returns all routes in table order.
	routes() []*Route

	// mode identifies the table's search strategy.
	mode() SearchMode
}

// dynamicTable is the ordered linear-scan representation.
type dynamicTable struct {
	ordered []*Route
}

func newDynamicTable() *dynamicTable {
	return &dynamicTable{}
}

func (t *dynamicTable) get(path string) (*Route, bool) {
	for _, rt := range t.ordered {
		if rt.path == path {
			return rt, true
		}
	}
	return nil, false
}

func (t *dynamicTable) add(rt *Route) {
	t.ordered = append(t.ordered, rt)
}

func (t *dynamicTable) lookup(path, method string) (*Route, map[string]string, bool) {
	reqSegs := splitSegments(path, '/')

	for _, rt := range t.ordered {
		if rt.entry(method) == nil {
			continue
		}
		if params, ok := matchSegments(reqSegs, rt.segments); ok {
			return rt, params, true
		}
	}

	return nil, nil, false
}

func (t *dynamicTable) routes() []*Route {
	return t.ordered
}

func (t *dynamicTable) mode() SearchMode {
	return SearchDynamic
}

// staticTable is the exact-match map representation. Insertion order is
// retained so a later mode switch re-derives the dynamic table in a
// deterministic order.
type staticTable struct {
	byPath  map[string]*Route
	ordered []*Route
}

func newStaticTable() *staticTable {
	return &staticTable{byPath: make(map[string]*Route)}
}

func (t *staticTable) get(path string) (*Route, bool) {
	rt, ok := t.byPath[path]
	return rt, ok
}

func (t *staticTable) add(rt *Route) {
	t.byPath[rt.path] = rt
	t.ordered = append(t.ordered, rt)
}

func (t *staticTable) lookup(path, method string) (*Route, map[string]string, bool) {
	rt, ok := t.byPath[path]
	if !ok || rt.entry(method) == nil {
		return nil, nil, false
	}
	return rt, nil, true
}

func (t *staticTable) routes() []*Route {
	return t.ordered
}

func (t *staticTable) mode() SearchMode {
	return SearchStatic
}

// newTable builds an empty table for the given mode.
func newTable(mode SearchMode) routeTable {
	if mode == SearchStatic {
		return newStaticTable()
	}
	return newDynamicTable()
}

// reorderRoutes partitions routes into plain, parameterized and wildcard
// groups, concatenated in that order with the relative order inside each
// group preserved, so literal routes are always tried first in dynamic mode
// regardless of insertion order.
func reorderRoutes(routes []*Route) []*Route {
	var plain, params, wildcards []*Route

	for _, rt := range routes {
		switch {
		case rt.hasWildcard():
			wildcards = append(wildcards, rt)
		case rt.hasParams():
			params = append(params, rt)
		default:
			plain = append(plain, rt)
		}
	}

	out := make([]*Route, 0, len(routes))
	out = append(out, plain...)
	out = append(out, params...)
	out = append(out, wildcards...)
	return out
}
