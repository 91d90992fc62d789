package chroma

import "strconv"

// Coord is an immutable canvas coordinate.
type Coord struct {
	X int
	Y int
}

// Key linearizes the coordinate for use as a map key (y*3000 + x).
func (c Coord) Key() uint32 {
	return uint32(c.Y)*CanvasSize + uint32(c.X)
}

// String renders the linearized key, which is how the journal identifies pixels.
func (c Coord) String() string {
	return strconv.FormatUint(uint64(c.Key()), 10)
}
