// Battle map generation using layered simplex noise.
// Elevation decides water and mountains, a second vegetation layer decides forest.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds battle map generation parameters.
type GenConfig struct {
	Width       int        // Columns (q)
	Height      int        // Rows (r)
	Seed        int64      // Random seed (0 = random)
	Flat        bool       // Skip noise: all grass
	WaterLevel  float64    // Elevation below which tiles are water (0.0–1.0)
	MountainLvl float64    // Elevation above which tiles are mountains (0.0–1.0)
	ForestLvl   float64    // Vegetation above which tiles are forest (0.0–1.0)
	Castles     []HexCoord // Tiles forced to castle terrain
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       10,
		Height:      10,
		Seed:        0,
		WaterLevel:  0.22,
		MountainLvl: 0.75,
		ForestLvl:   0.62,
	}
}

// SmallTestConfig returns a tiny flat map for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Width = 3
	cfg.Height = 3
	cfg.Seed = 42
	cfg.Flat = true
	return cfg
}

// Generate creates a grid of the configured size and paints its terrain.
func Generate(cfg GenConfig) *Grid {
	g := NewGrid(cfg.Width, cfg.Height)
	Paint(g, cfg)
	return g
}

// Paint assigns terrain to every tile of g. Deterministic for a non-zero seed.
func Paint(g *Grid, cfg GenConfig) {
	if !cfg.Flat {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Int63()
		}

		elevNoise := opensimplex.NewNormalized(seed)
		vegNoise := opensimplex.NewNormalized(seed + 1)

		for _, c := range g.Coords() {
			// Axial → cartesian for noise sampling (flat-top).
			x := float64(c.Q) * 1.5
			y := math.Sqrt(3.0) * (float64(c.R) + float64(c.Q)/2.0)

			elev := octaveNoise(elevNoise, x, y, 3, 0.12, 0.5)
			veg := octaveNoise(vegNoise, x, y, 2, 0.15, 0.5)

			g.Tiles[c].Terrain = deriveTerrain(elev, veg, cfg)
		}
	}

	for _, c := range cfg.Castles {
		g.SetTerrain(c, TerrainCastle)
	}
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, veg float64, cfg GenConfig) Terrain {
	if elev < cfg.WaterLevel {
		return TerrainWater
	}
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if veg > cfg.ForestLvl {
		return TerrainForest
	}
	return TerrainGrass
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range g.Tiles {
		counts[t.Terrain]++
	}
	return counts
}
