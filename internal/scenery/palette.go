package scenery

import (
	"hexisland/internal/environment"
	"hexisland/internal/registry"
	"hexisland/internal/rgb"
	"hexisland/internal/terrain"
)

// TileColors are the muted biome colours used for tile tops.
var TileColors = map[terrain.Biome]rgb.Color{
	terrain.DeepWater:    rgb.Hex(0x1F4E79),
	terrain.ShallowWater: rgb.Hex(0x4682B4),
	terrain.Sand:         rgb.Hex(0xBDB76B),
	terrain.Clay:         rgb.Hex(0xCD853F),
	terrain.Pasture:      rgb.Hex(0x8FBC8F),
	terrain.Forest:       rgb.Hex(0x808060),
	terrain.Stone:        rgb.Hex(0x778899),
	terrain.MountainPeak: rgb.Hex(0xA9A9A9),
}

var (
	trunkColor   = rgb.Hex(0x5D4037)
	foliageColor = rgb.Hex(0x808060)
	rockColor    = rgb.Hex(0x696969)
	reedColor    = rgb.Hex(0x8FBC8F)
)

// Part is one coloured surface of a building model. HeatSensitive marks
// lamp fittings, which shed snow while their lamp is lit.
type Part struct {
	Name          string
	Color         rgb.Color
	Role          environment.Role
	HeatSensitive bool
}

var buildingParts = map[registry.BuildingType][]Part{
	registry.House: {
		{Name: "roof", Color: rgb.Hex(0xA52A2A), Role: environment.RoleTop},
		{Name: "walls", Color: rgb.Hex(0xD2B48C), Role: environment.RoleSide},
		{Name: "door", Color: rgb.Hex(0x8B4513), Role: environment.RoleSide},
		{Name: "frames", Color: rgb.Hex(0x7A5230), Role: environment.RoleSide},
		{Name: "lamp post", Color: rgb.Hex(0x505050), Role: environment.RoleSide, HeatSensitive: true},
		{Name: "windows", Color: rgb.Hex(0xFFFFAA), Role: environment.RoleEmissive},
	},
	registry.Farm: {
		{Name: "soil", Color: rgb.Hex(0x654321), Role: environment.RoleTop},
		{Name: "fence", Color: rgb.Hex(0x8B7355), Role: environment.RoleSide},
	},
	registry.Campfire: {
		{Name: "logs", Color: rgb.Hex(0x8B4513), Role: environment.RoleTop},
		{Name: "stones", Color: rgb.Hex(0x808080), Role: environment.RoleTop},
		{Name: "flame", Color: rgb.Hex(0xFF8C00), Role: environment.RoleEmissive},
	},
	registry.Mine: {
		{Name: "roof", Color: rgb.Hex(0x6B4226), Role: environment.RoleTop},
		{Name: "frame", Color: rgb.Hex(0x7A5230), Role: environment.RoleSide},
		{Name: "entrance", Color: rgb.Hex(0x2E2E2E), Role: environment.RoleSide},
		{Name: "lamp post", Color: rgb.Hex(0x4A4A4A), Role: environment.RoleSide, HeatSensitive: true},
	},
	registry.Harbour: {
		{Name: "deck", Color: rgb.Hex(0x8B7355), Role: environment.RoleTop},
		{Name: "posts", Color: rgb.Hex(0x5D4037), Role: environment.RoleSide},
		{Name: "pier lamp", Color: rgb.Hex(0x505050), Role: environment.RoleSide, HeatSensitive: true},
	},
}

// BuildingParts returns the surfaces of a building type.
func BuildingParts(t registry.BuildingType) []Part {
	return append([]Part(nil), buildingParts[t]...)
}
