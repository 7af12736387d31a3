package config

// Overrides is a two-level lookup table: entries for an exact
// (block, wire) pair and defaults for a whole block.
type Overrides[T any] struct {
	blocks map[string]T
	wires  map[string]map[string]T
}

// SetBlock records the default for every wire of block.
func (o *Overrides[T]) SetBlock(block string, v T) {
	if o.blocks == nil {
		o.blocks = make(map[string]T)
	}
	o.blocks[block] = v
}

// SetWire records the value for one wire.
func (o *Overrides[T]) SetWire(block, wire string, v T) {
	if o.wires == nil {
		o.wires = make(map[string]map[string]T)
	}
	byWire, ok := o.wires[block]
	if !ok {
		byWire = make(map[string]T)
		o.wires[block] = byWire
	}
	byWire[wire] = v
}

// Exact returns the entry recorded for the wire itself.
func (o Overrides[T]) Exact(block, wire string) (T, bool) {
	v, ok := o.wires[block][wire]
	return v, ok
}

// Block returns the default recorded for block.
func (o Overrides[T]) Block(block string) (T, bool) {
	v, ok := o.blocks[block]
	return v, ok
}

// Lookup returns the exact entry, else the block default, else fallback().
// A nil fallback yields the zero value.
func (o Overrides[T]) Lookup(block, wire string, fallback func() T) T {
	if v, ok := o.Exact(block, wire); ok {
		return v
	}
	if v, ok := o.Block(block); ok {
		return v
	}
	if fallback == nil {
		var zero T
		return zero
	}
	return fallback()
}

// Len reports the number of wire entries and block defaults.
func (o Overrides[T]) Len() int {
	n := len(o.blocks)
	for _, byWire := range o.wires {
		n += len(byWire)
	}
	return n
}
