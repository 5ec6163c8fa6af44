package tile

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos is the block position of a tile.
type Pos [3]int

func (p Pos) X() int { return p[0] }
func (p Pos) Y() int { return p[1] }
func (p Pos) Z() int { return p[2] }

// Vec3Centre returns the centre of the block at the position.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// String formats the position as (x, y, z).
func (p Pos) String() string {
	return fmt.Sprintf("(%v, %v, %v)", p[0], p[1], p[2])
}
