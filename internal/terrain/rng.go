package terrain

// cellRNG is a xorshift stream keyed by cell position, so a cell draws the
// same jitter and bleed rolls whichever worker processes it.
type cellRNG struct {
	state uint64
}

func newCellRNG(column, row int, seed int64) *cellRNG {
	state := uint64(uint32(column))<<32 ^ uint64(uint32(row))<<1 ^ uint64(seed)
	state ^= 0x9e3779b97f4a7c15
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	r := &cellRNG{state: state}
	r.next()
	r.next()
	return r
}

func (r *cellRNG) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}

// Float64 returns a value in [0,1).
func (r *cellRNG) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

func (r *cellRNG) uniform(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
