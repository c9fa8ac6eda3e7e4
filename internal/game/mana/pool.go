package mana

// Color represents one of the six mana colors tracked in a pool.
type Color string

const (
	White     Color = "white"
	Blue      Color = "blue"
	Black     Color = "black"
	Red       Color = "red"
	Green     Color = "green"
	Colorless Color = "colorless"
)

// Colors lists every tracked color in display order.
var Colors = []Color{White, Blue, Black, Red, Green, Colorless}

// Pool is a player's mana pool: six fixed color counters. Clients set
// the counters to absolute values; the pool never goes negative.
// Access is guarded by the owning session's lock.
type Pool struct {
	White     int `json:"white"`
	Blue      int `json:"blue"`
	Black     int `json:"black"`
	Red       int `json:"red"`
	Green     int `json:"green"`
	Colorless int `json:"colorless"`
}

// NewPool creates an empty mana pool.
func NewPool() *Pool {
	return &Pool{}
}

// Set sets a color counter to an absolute value, clamped at zero.
// Returns false for an unknown color.
func (p *Pool) Set(color Color, value int) bool {
	if value < 0 {
		value = 0
	}
	switch color {
	case White:
		p.White = value
	case Blue:
		p.Blue = value
	case Black:
		p.Black = value
	case Red:
		p.Red = value
	case Green:
		p.Green = value
	case Colorless:
		p.Colorless = value
	default:
		return false
	}
	return true
}

// Get returns the counter for a color, or zero for an unknown color.
func (p *Pool) Get(color Color) int {
	switch color {
	case White:
		return p.White
	case Blue:
		return p.Blue
	case Black:
		return p.Black
	case Red:
		return p.Red
	case Green:
		return p.Green
	case Colorless:
		return p.Colorless
	default:
		return 0
	}
}

// Total returns the total mana across all colors.
func (p *Pool) Total() int {
	return p.White + p.Blue + p.Black + p.Red + p.Green + p.Colorless
}

// Empty zeroes every color counter.
func (p *Pool) Empty() {
	*p = Pool{}
}

// Copy creates a deep copy of the pool.
func (p *Pool) Copy() *Pool {
	cp := *p
	return &cp
}
