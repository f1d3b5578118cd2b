// Package tiling implements the tile-mirroring synchronization engine:
// it keeps every drawn shape consistent across tile-boundary offsets so
// the pattern repeats without seams. Two strategies coexist: physical
// replication (a 5x5 grid of real copies) and canonical storage (one
// entity plus an interactive proxy, with neighbor ghosts drawn by the
// display layer).
package tiling

import (
	"math"

	"pattern-tiler/pkg/geometry"
)

// GridRadius is the half-extent of the physical replication grid:
// offsets run over {-GridRadius..GridRadius} on both axes.
const GridRadius = 2

// NeighborOffsets are the eight tile offsets surrounding the center
// tile, used by export-time reconstruction.
var NeighborOffsets = [8]geometry.PointInt{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// NormalizeToTile maps any real coordinate to the tile-local interval
// [0, tileSize). The mod-then-shift form keeps negative inputs correct.
func NormalizeToTile(v, tileSize float64) float64 {
	return math.Mod(math.Mod(v, tileSize)+tileSize, tileSize)
}

// NormalizeToCenterTile maps a coordinate into the center tile of the
// virtual strategy, which occupies [tileSize, 2*tileSize). Values
// already inside that interval are returned unchanged.
func NormalizeToCenterTile(v, tileSize float64) float64 {
	return NormalizeToTile(v, tileSize) + tileSize
}

// NormalizePoint applies NormalizeToTile on both axes.
func NormalizePoint(p geometry.Point2D, tileSize float64) geometry.Point2D {
	return geometry.Point2D{
		X: NormalizeToTile(p.X, tileSize),
		Y: NormalizeToTile(p.Y, tileSize),
	}
}

// AbsolutePosition maps a (tile offset, local position) pair back to
// absolute scene coordinates.
func AbsolutePosition(offset geometry.PointInt, local geometry.Point2D, tileSize float64) geometry.Point2D {
	return geometry.Point2D{
		X: float64(offset.X)*tileSize + local.X,
		Y: float64(offset.Y)*tileSize + local.Y,
	}
}

// GridOffsets enumerates every offset of the replication grid in row
// order, (-radius,-radius) through (radius,radius).
func GridOffsets(radius int) []geometry.PointInt {
	side := 2*radius + 1
	out := make([]geometry.PointInt, 0, side*side)
	for ty := -radius; ty <= radius; ty++ {
		for tx := -radius; tx <= radius; tx++ {
			out = append(out, geometry.PointInt{X: tx, Y: ty})
		}
	}
	return out
}
