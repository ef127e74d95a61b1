package registry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexisland/internal/environment"
	"hexisland/internal/terrain"
)

// testMap lays out rows top to bottom:
//
//	row 0: deep    shallow sand
//	row 1: pasture forest  stone
//	row 2: clay    peak    pasture
func testMap() *terrain.Map {
	biomes := [][]terrain.Biome{
		{terrain.DeepWater, terrain.ShallowWater, terrain.Sand},
		{terrain.Pasture, terrain.Forest, terrain.Stone},
		{terrain.Clay, terrain.MountainPeak, terrain.Pasture},
	}
	m := &terrain.Map{Columns: 3, Rows: 3}
	for r, row := range biomes {
		for c, b := range row {
			m.Cells = append(m.Cells, terrain.Cell{Key: terrain.GridKey{Column: c, Row: r}, Elevation: 0.5, Biome: b})
		}
	}
	return m
}

func key(c, r int) terrain.GridKey {
	return terrain.GridKey{Column: c, Row: r}
}

func TestPlaceAndGet(t *testing.T) {
	reg := New(testMap(), rand.New(rand.NewSource(1)))

	yaw := math.Pi / 2
	placed, err := reg.Place(key(1, 1), House, &yaw)
	require.NoError(t, err)
	assert.Equal(t, Building{Type: House, Key: key(1, 1), Rotation: yaw}, placed)

	got, ok := reg.Get(key(1, 1))
	require.True(t, ok)
	assert.Equal(t, placed, got)

	_, ok = reg.Get(key(2, 2))
	assert.False(t, ok)
	_, err = reg.Lookup(key(2, 2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceRejectsInvalidTiles(t *testing.T) {
	reg := New(testMap(), nil)

	tests := []struct {
		name string
		key  terrain.GridKey
		kind BuildingType
		want error
	}{
		{name: "water", key: key(0, 0), kind: House, want: ErrNotBuildable},
		{name: "peak", key: key(1, 2), kind: Mine, want: ErrNotBuildable},
		{name: "outside", key: key(5, 5), kind: Farm, want: ErrOutOfBounds},
		{name: "unknown", key: key(1, 1), kind: "castle", want: ErrUnknownBuilding},
		{name: "inland harbour", key: key(2, 2), kind: Harbour, want: ErrNotCoastal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Place(tt.key, tt.kind, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, reg.Len())
}

func TestHarbourNeedsAdjacentWater(t *testing.T) {
	reg := New(testMap(), nil)

	_, err := reg.Place(key(2, 0), Harbour, nil)
	require.NoError(t, err, "sand beside shallow water")

	_, err = reg.Place(key(0, 1), Harbour, nil)
	require.NoError(t, err, "odd row pasture below deep water")

	_, err = reg.Place(key(2, 1), Harbour, nil)
	assert.ErrorIs(t, err, ErrNotCoastal, "odd row stone has no water neighbour")
}

func TestPlaceReplacesAndRandomisesRotation(t *testing.T) {
	reg := New(testMap(), rand.New(rand.NewSource(4)))

	first, err := reg.Place(key(1, 1), Farm, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first.Rotation, 0.0)
	assert.Less(t, first.Rotation, 2*math.Pi)

	second, err := reg.Place(key(1, 1), Campfire, nil)
	require.NoError(t, err)
	assert.Equal(t, Campfire, second.Type)
	assert.Equal(t, 1, reg.Len())
}

func TestRotateAndRemove(t *testing.T) {
	reg := New(testMap(), nil)
	yaw := 1.5 * math.Pi
	_, err := reg.Place(key(0, 2), Mine, &yaw)
	require.NoError(t, err)

	rotated, err := reg.Rotate(key(0, 2), math.Pi)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Pi, rotated.Rotation, 1e-12)

	require.NoError(t, reg.Remove(key(0, 2)))
	assert.ErrorIs(t, reg.Remove(key(0, 2)), ErrNotFound)
	_, err = reg.Rotate(key(0, 2), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllIsSortedCopy(t *testing.T) {
	reg := New(testMap(), nil)
	for _, k := range []terrain.GridKey{key(2, 2), key(1, 1), key(0, 1)} {
		_, err := reg.Place(k, Farm, nil)
		require.NoError(t, err)
	}
	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, []terrain.GridKey{key(0, 1), key(1, 1), key(2, 2)}, []terrain.GridKey{all[0].Key, all[1].Key, all[2].Key})

	all[0].Type = House
	b, _ := reg.Get(key(0, 1))
	assert.Equal(t, Farm, b.Type)
}

func TestResetClearsBuildings(t *testing.T) {
	reg := New(testMap(), nil)
	_, err := reg.Place(key(1, 1), House, nil)
	require.NoError(t, err)

	reg.Reset(testMap())
	assert.Zero(t, reg.Len())

	empty := New(nil, nil)
	_, err = empty.Place(key(0, 0), House, nil)
	assert.ErrorIs(t, err, ErrNoMapInitialized)
}

func TestHeatAtFollowsLightSchedules(t *testing.T) {
	reg := New(testMap(), nil)
	_, err := reg.Place(key(1, 1), Campfire, nil)
	require.NoError(t, err)
	_, err = reg.Place(key(2, 2), House, nil)
	require.NoError(t, err)
	_, err = reg.Place(key(0, 1), Farm, nil)
	require.NoError(t, err)

	assert.Equal(t, environment.HeatFire, reg.HeatAt(key(1, 1), 12))
	assert.Equal(t, environment.HeatFire, reg.HeatAt(key(1, 1), 23))

	assert.Equal(t, environment.HeatNone, reg.HeatAt(key(2, 2), 12))
	assert.Equal(t, environment.HeatLamp, reg.HeatAt(key(2, 2), 22))

	assert.Equal(t, environment.HeatNone, reg.HeatAt(key(0, 1), 22))
	assert.Equal(t, environment.HeatNone, reg.HeatAt(key(2, 0), 22))

	status, ok := reg.OnTile(key(2, 2), 22)
	require.True(t, ok)
	assert.True(t, status.IsLit)
	assert.InDelta(t, 0.7, status.LightIntensity, 1e-12)
}
