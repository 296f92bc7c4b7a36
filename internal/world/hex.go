// Package world provides the coordinates and named places shared by the
// memory, rumor and tile systems. Visibility and pathing belong to the host's
// grid; this package only identifies locations and measures between them.
package world

import (
	"encoding/json"
	"fmt"
)

// Coord is a square-grid coordinate. It serializes as a two-element array
// [x, y] so snapshots stay JSON-compatible.
type Coord struct {
	X int
	Y int
}

// String returns "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// MarshalJSON encodes the coordinate as [x, y].
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

// UnmarshalJSON decodes [x, y].
func (c *Coord) UnmarshalJSON(b []byte) error {
	var xy [2]int
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("coord: %w", err)
	}
	c.X, c.Y = xy[0], xy[1]
	return nil
}

// Less orders coordinates by X then Y. Used wherever map iteration order
// would otherwise leak into results.
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Location is a coordinate with a human-readable name.
type Location struct {
	Coord Coord  `json:"coord"`
	Name  string `json:"name"`
}

// Label returns the name, or the coordinate when unnamed.
func (l Location) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Coord.String()
}

// NeighborDirections defines the eight neighbor offsets.
var NeighborDirections = [8]Coord{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

// Neighbors returns the eight adjacent coordinates.
func (c Coord) Neighbors() [8]Coord {
	var result [8]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{X: c.X + dir.X, Y: c.Y + dir.Y}
	}
	return result
}

// Distance returns the Chebyshev distance between two coordinates
// (diagonal steps cost the same as straight ones).
func Distance(a, b Coord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
