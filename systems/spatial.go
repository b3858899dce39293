package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// Neighbor holds a nearby entity with precomputed spatial data so callers
// avoid re-deriving deltas and distances in hot paths.
type Neighbor struct {
	E       ecs.Entity
	Species components.Species
	DX, DY  float32 // delta from query origin
	DistSq  float32
	VX, VY  float32 // velocity at insert time, used by flocking
}

// gridRecord is an entity's entry in its current cell.
type gridRecord struct {
	e       ecs.Entity
	species components.Species
	x, y    float32
	vx, vy  float32
}

// SpatialGrid provides neighbor lookups using a uniform cell grid. A
// reverse entity->cell map turns a position change into an O(1) cell
// migration instead of a full rebuild.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]gridRecord
	lookup   map[ecs.Entity]int // entity -> flat cell index
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]gridRecord, cols*rows)
	for i := range cells {
		cells[i] = make([]gridRecord, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
		lookup:   make(map[ecs.Entity]int, 256),
	}
}

// Update inserts the entity or migrates it to the cell matching its
// current position, refreshing the cached position and velocity.
func (g *SpatialGrid) Update(e ecs.Entity, species components.Species, x, y, vx, vy float32) {
	idx := g.cellIndex(x, y)

	if prev, ok := g.lookup[e]; ok {
		if prev == idx {
			// Same cell: refresh the record in place.
			cell := g.cells[prev]
			for i := range cell {
				if cell[i].e == e {
					cell[i].x, cell[i].y = x, y
					cell[i].vx, cell[i].vy = vx, vy
					return
				}
			}
		} else {
			g.removeFromCell(e, prev)
		}
	}

	g.cells[idx] = append(g.cells[idx], gridRecord{e: e, species: species, x: x, y: y, vx: vx, vy: vy})
	g.lookup[e] = idx
}

// Remove deletes the entity from both its cell and the reverse map.
func (g *SpatialGrid) Remove(e ecs.Entity) {
	idx, ok := g.lookup[e]
	if !ok {
		return
	}
	g.removeFromCell(e, idx)
	delete(g.lookup, e)
}

// removeFromCell splices the entity out of the given cell by swap-remove.
func (g *SpatialGrid) removeFromCell(e ecs.Entity, idx int) {
	cell := g.cells[idx]
	for i := range cell {
		if cell[i].e == e {
			last := len(cell) - 1
			cell[i] = cell[last]
			g.cells[idx] = cell[:last]
			return
		}
	}
}

// Contains reports whether the entity is tracked by the grid.
func (g *SpatialGrid) Contains(e ecs.Entity) bool {
	_, ok := g.lookup[e]
	return ok
}

// Count returns the number of tracked entities.
func (g *SpatialGrid) Count() int {
	return len(g.lookup)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries
// so density spikes cannot cause unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius whose species is in mask
// and appends to dst (up to MaxQueryResults), excluding the querying
// entity. The cell ring covers every cell that could contain a point
// within radius, so there are no false negatives; entities slightly
// outside radius never appear because an exact distance check is applied.
// Returns the updated slice; reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, mask components.SpeciesMask) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, rec := range g.cells[row*g.cols+col] {
				if rec.e == exclude || !mask.Has(rec.species) {
					continue
				}

				dx := rec.x - x
				dy := rec.y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{
						E:       rec.e,
						Species: rec.species,
						DX:      dx,
						DY:      dy,
						DistSq:  distSq,
						VX:      rec.vx,
						VY:      rec.vy,
					})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position, clamped to the
// grid bounds.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
