package preview

import (
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-billy.v4/memfs"

	"hexisland/internal/registry"
	"hexisland/internal/scenery"
	"hexisland/internal/terrain"
)

func testMap() *terrain.Map {
	biomes := [][]terrain.Biome{
		{terrain.DeepWater, terrain.ShallowWater, terrain.Sand},
		{terrain.Pasture, terrain.Forest, terrain.Stone},
	}
	m := &terrain.Map{Columns: 3, Rows: 2, Thresholds: terrain.DefaultBiomeParams().Thresholds()}
	for r, row := range biomes {
		for c, b := range row {
			elevation := 0.05
			if !b.IsWater() {
				elevation = 0.6
			}
			m.Cells = append(m.Cells, terrain.Cell{Key: terrain.GridKey{Column: c, Row: r}, Elevation: elevation, Biome: b})
		}
	}
	return m
}

func pixel(t *testing.T, opts Options, m *terrain.Map, key terrain.GridKey) uint32 {
	t.Helper()
	img, err := Render(m, opts)
	require.NoError(t, err)
	x, y := Center(key, opts.HexSize)
	c := img.RGBAAt(int(x), int(y))
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func TestRenderDimensions(t *testing.T) {
	img, err := Render(testMap(), Options{HexSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 61, img.Bounds().Dx())
	assert.Equal(t, 35, img.Bounds().Dy())
}

func TestRenderRejectsEmptyMaps(t *testing.T) {
	_, err := Render(nil, DefaultOptions())
	assert.Error(t, err)
	_, err = Render(&terrain.Map{}, DefaultOptions())
	assert.Error(t, err)
}

func TestRenderColoursTilesByBiome(t *testing.T) {
	m := testMap()
	opts := DefaultOptions()
	for _, cell := range m.Cells {
		want := tileColor(cell, m.Thresholds, opts).Uint32()
		assert.Equal(t, want, pixel(t, opts, m, cell.Key), "tile %v", cell.Key)
	}

	img, err := Render(m, opts)
	require.NoError(t, err)
	corner := img.RGBAAt(0, 0)
	assert.Equal(t, opts.Background.Uint32(), uint32(corner.R)<<16|uint32(corner.G)<<8|uint32(corner.B))
}

func TestTileColorShadesByElevation(t *testing.T) {
	th := terrain.DefaultBiomeParams().Thresholds()
	opts := DefaultOptions()
	low := tileColor(terrain.Cell{Biome: terrain.Pasture, Elevation: th.Water + 0.01}, th, opts)
	high := tileColor(terrain.Cell{Biome: terrain.Pasture, Elevation: 0.99}, th, opts)
	assert.Less(t, low.Lightness(), high.Lightness())

	shallow := tileColor(terrain.Cell{Biome: terrain.ShallowWater, Elevation: th.Water - 0.01}, th, opts)
	deep := tileColor(terrain.Cell{Biome: terrain.ShallowWater, Elevation: 0}, th, opts)
	assert.Greater(t, shallow.Lightness(), deep.Lightness())
}

func TestRenderAppliesSnowToLandOnly(t *testing.T) {
	m := testMap()
	plain := DefaultOptions()
	snowy := DefaultOptions()
	snowy.SnowRatio = 1

	land := terrain.GridKey{Column: 0, Row: 1}
	water := terrain.GridKey{Column: 0, Row: 0}
	assert.NotEqual(t, pixel(t, plain, m, land), pixel(t, snowy, m, land))
	assert.Equal(t, pixel(t, plain, m, water), pixel(t, snowy, m, water))
}

func TestRenderDrawsBuildingMarkers(t *testing.T) {
	m := testMap()
	opts := DefaultOptions()
	key := terrain.GridKey{Column: 2, Row: 0}
	opts.Buildings = []registry.Building{
		{Type: registry.House, Key: key},
		{Type: registry.Farm, Key: terrain.GridKey{Column: 9, Row: 9}},
	}
	want := scenery.BuildingParts(registry.House)[0].Color.Uint32()
	assert.Equal(t, want, pixel(t, opts, m, key))
}

func TestWritePNG(t *testing.T) {
	fs := memfs.New()
	img, err := Render(testMap(), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, WritePNG(fs, "out/island.png", img))

	f, err := fs.Open("out/island.png")
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
