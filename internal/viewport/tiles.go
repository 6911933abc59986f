package viewport

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Tiles returns the map tiles at zoom that the image described by r covers.
func (r Result) Tiles(zoom maptile.Zoom) []maptile.Tile {
	minX, maxX, minY, maxY := tileRange(r.Bound(), zoom)

	tiles := make([]maptile.Tile, 0, int(maxX-minX+1)*int(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, maptile.New(x, y, zoom))
		}
	}
	return tiles
}

// TileCount returns len(r.Tiles(zoom)) without allocating the list.
func (r Result) TileCount(zoom maptile.Zoom) int {
	minX, maxX, minY, maxY := tileRange(r.Bound(), zoom)
	return int(maxX-minX+1) * int(maxY-minY+1)
}

func tileRange(b orb.Bound, zoom maptile.Zoom) (minX, maxX, minY, maxY uint32) {
	minTile := maptile.At(b.Min, zoom)
	maxTile := maptile.At(b.Max, zoom)

	// Y is inverted between lat/lon and tile rows
	minX, maxX = minTile.X, maxTile.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY = minTile.Y, maxTile.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return minX, maxX, minY, maxY
}
