package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Arena bounds. Spawn placement clamps into this square regardless of what
// the caller asked for.
const (
	HalfExtent = 120.0
)

// Hill is a radial bump in the arena floor.
type Hill struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

// HillSet is the terrain layout for one level.
type HillSet struct {
	Name  string `json:"name"`
	Hills []Hill `json:"hills"`
}

var hillSets = []HillSet{
	{
		Name: "lowlands",
		Hills: []Hill{
			{X: -40, Z: 30, Radius: 25, Height: 6},
			{X: 55, Z: -20, Radius: 30, Height: 8},
		},
	},
	{
		Name: "ridge",
		Hills: []Hill{
			{X: 0, Z: 0, Radius: 45, Height: 12},
			{X: -70, Z: -60, Radius: 20, Height: 5},
			{X: 70, Z: 60, Radius: 20, Height: 5},
		},
	},
	{
		Name: "craters",
		Hills: []Hill{
			{X: -60, Z: 50, Radius: 18, Height: 9},
			{X: 60, Z: 50, Radius: 18, Height: 9},
			{X: 0, Z: -65, Radius: 22, Height: 11},
		},
	},
}

// ForLevel cycles through the hill sets as the level counter advances.
func ForLevel(level int) HillSet {
	if level < 1 {
		level = 1
	}
	return hillSets[(level-1)%len(hillSets)]
}

// HeightAt samples the floor height under a point for the given layout.
func (s HillSet) HeightAt(x, z float64) float64 {
	height := 0.0
	for _, hill := range s.Hills {
		dist := math.Hypot(x-hill.X, z-hill.Z)
		if dist >= hill.Radius {
			continue
		}
		// Cosine falloff from peak to rim.
		contribution := hill.Height * 0.5 * (1 + math.Cos(math.Pi*dist/hill.Radius))
		if contribution > height {
			height = contribution
		}
	}
	return height
}

// PlaceOnGround resolves a preferred x,z to a guaranteed-clear spawn point,
// clamped into the arena and resting on the terrain surface.
func (s HillSet) PlaceOnGround(preferredX, preferredZ float64) mgl64.Vec3 {
	x := clamp(preferredX, -HalfExtent, HalfExtent)
	z := clamp(preferredZ, -HalfExtent, HalfExtent)
	return mgl64.Vec3{x, s.HeightAt(x, z), z}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
