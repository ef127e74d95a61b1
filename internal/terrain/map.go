package terrain

// Cell is one generated tile. Cells are immutable once the map is built.
type Cell struct {
	Key       GridKey `json:"key"`
	Elevation float64 `json:"normalizedElevation"`
	Biome     Biome   `json:"biome"`
}

// Map is the generator output, stored row-major.
type Map struct {
	Columns    int        `json:"columns"`
	Rows       int        `json:"rows"`
	Thresholds Thresholds `json:"thresholds"`
	Cells      []Cell     `json:"cells"`
}

func newMap(columns, rows int, thresholds Thresholds) *Map {
	return &Map{
		Columns:    columns,
		Rows:       rows,
		Thresholds: thresholds,
		Cells:      make([]Cell, columns*rows),
	}
}

func (m *Map) InBounds(key GridKey) bool {
	return m != nil && key.Column >= 0 && key.Row >= 0 && key.Column < m.Columns && key.Row < m.Rows
}

// Get returns the cell at key; ok is false outside the grid.
func (m *Map) Get(key GridKey) (Cell, bool) {
	if !m.InBounds(key) {
		return Cell{}, false
	}
	return m.Cells[key.Row*m.Columns+key.Column], true
}

// Neighbors returns the in-bounds cells around key.
func (m *Map) Neighbors(key GridKey) []Cell {
	var out []Cell
	for _, n := range key.Neighbors() {
		if cell, ok := m.Get(n); ok {
			out = append(out, cell)
		}
	}
	return out
}

// Stats summarises a map for logs and the generator CLI.
type Stats struct {
	Cells        int           `json:"cells"`
	LandCells    int           `json:"landCells"`
	Counts       map[Biome]int `json:"counts"`
	MinElevation float64       `json:"minElevation"`
	MaxElevation float64       `json:"maxElevation"`
}

func (s Stats) LandRatio() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.LandCells) / float64(s.Cells)
}

func (m *Map) Stats() Stats {
	stats := Stats{Counts: make(map[Biome]int, len(Biomes))}
	if m == nil || len(m.Cells) == 0 {
		return stats
	}
	stats.MinElevation = m.Cells[0].Elevation
	stats.MaxElevation = m.Cells[0].Elevation
	for _, cell := range m.Cells {
		stats.Cells++
		stats.Counts[cell.Biome]++
		if !cell.Biome.IsWater() {
			stats.LandCells++
		}
		if cell.Elevation < stats.MinElevation {
			stats.MinElevation = cell.Elevation
		}
		if cell.Elevation > stats.MaxElevation {
			stats.MaxElevation = cell.Elevation
		}
	}
	return stats
}
