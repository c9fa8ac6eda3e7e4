package counters

// Counter represents a named counter on a player (poison, energy, ...).
type Counter struct {
	Name  string
	Count int
}

// Copy creates a deep copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{
		Name:  c.Name,
		Count: c.Count,
	}
}

// Counters manages an open-ended collection of named counters.
// Counters at zero are dropped from the collection.
type Counters struct {
	byName map[string]*Counter
}

// New creates an empty Counters collection.
func New() *Counters {
	return &Counters{
		byName: make(map[string]*Counter),
	}
}

// Set sets a named counter to an absolute value. Values at or below
// zero remove the counter.
func (cs *Counters) Set(name string, value int) {
	if value <= 0 {
		delete(cs.byName, name)
		return
	}
	if c, ok := cs.byName[name]; ok {
		c.Count = value
		return
	}
	cs.byName[name] = &Counter{Name: name, Count: value}
}

// Add adds amount to a named counter, creating it when absent and
// removing it when the result drops to zero or below.
func (cs *Counters) Add(name string, amount int) {
	cs.Set(name, cs.Get(name)+amount)
}

// Get returns the count of a named counter, zero when absent.
func (cs *Counters) Get(name string) int {
	if c, ok := cs.byName[name]; ok {
		return c.Count
	}
	return 0
}

// Has reports whether any counters of the given name exist.
func (cs *Counters) Has(name string) bool {
	return cs.Get(name) > 0
}

// Clear removes every counter.
func (cs *Counters) Clear() {
	cs.byName = make(map[string]*Counter)
}

// Copy creates a deep copy of the collection.
func (cs *Counters) Copy() *Counters {
	cp := New()
	for name, c := range cs.byName {
		cp.byName[name] = c.Copy()
	}
	return cp
}

// AsMap returns the counters as a plain name-to-count map.
func (cs *Counters) AsMap() map[string]int {
	m := make(map[string]int, len(cs.byName))
	for name, c := range cs.byName {
		m[name] = c.Count
	}
	return m
}
