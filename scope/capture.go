package scope

// promote resolves name against fn's enclosing functions, walking outward
// one function at a time. Each function it crosses gets a new Free
// binding; the function that actually owns the name (or the first one
// that already captured it) has its Local binding upgraded to Cell. This
// is the direct analogue of the teacher's resolver.use: "found in a
// parent block which belongs to an enclosing function ... turn the
// parent's local into cell" (§4.1 "Capture resolution").
func (c *Core) promote(fn *function, name string) (*Binding, Class) {
	owner := fn.parent
	// functions strictly between the true owner and fn, nearest-to-owner
	// first, that must each grow a Free binding to relay the capture inward.
	var relay []*function

	for owner != nil {
		if bd, ok := owner.freeByName.Get(name); ok {
			return c.threadCapture(relay, bd, false)
		}
		for b := owner.top; b != nil; b = b.parent {
			if bd, ok := b.names.Get(name); ok {
				if bd.Class == Local {
					bd.Class = Cell
				}
				return c.threadCapture(relay, bd, true)
			}
		}
		relay = append([]*function{owner}, relay...)
		owner = owner.parent
	}
	return nil, Global
}

// threadCapture creates a Free binding in every function of relay (ordered
// nearest-owner first) plus c.fn itself, each sourcing its value from the
// previous hop. The first hop reads a Cell (fromCell=true); every
// subsequent hop reads the prior hop's own Free/var-ref slot
// (§4.1 "Transitive capture": a doubly-nested function captures through
// its immediate parent's free-variable table, not by reaching past it —
// required because FCLOSURE only ever reads its immediate parent's frame).
func (c *Core) threadCapture(relay []*function, source *Binding, fromCell bool) (*Binding, Class) {
	through := source
	for _, next := range append(relay, c.fn) {
		free := &Binding{Name: source.Name, Kind: source.Kind, Class: Free, Pos: source.Pos}
		free.Slot = uint16(len(next.captures))
		next.freeByName.Put(source.Name, free)
		next.captures = append(next.captures, Capture{
			Name:       source.Name,
			FromParent: through,
			FromCell:   fromCell,
		})
		through = free
		fromCell = false
	}
	return through, Free
}
