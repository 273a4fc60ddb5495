package wad

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// QuadKind is the wall section a quad was built for.
type QuadKind int

const (
	QuadMiddle QuadKind = iota
	QuadBottom
	QuadTop
)

func (k QuadKind) String() string {
	switch k {
	case QuadBottom:
		return "bottom"
	case QuadTop:
		return "top"
	}
	return "middle"
}

// UVRect holds texture coordinates for the four quad corners, in vertex order: v1 floor,
// v1 ceiling, v2 ceiling, v2 floor.
type UVRect [4]mgl32.Vec2

// WallUVs computes the texture coordinates of a wall quad of the given length and height.
// The unpegged flag that applies depends on the quad: upper unpegged for the top section of
// a two-sided line, lower unpegged otherwise. Set, it anchors one-sided, middle and bottom
// quads at the floor and top quads at the ceiling; clear, the other way round.
func WallUVs(kind QuadKind, flags uint16, oneSided bool, length, height float32, offsetX, offsetY int16, texWidth, texHeight int) UVRect {
	w, h := float32(texWidth), float32(texHeight)
	lenU := length / w
	lenV := math32.Abs(height) / h
	offU := float32(offsetX) / w
	offV := -float32(offsetY) / h

	var floorAnchored bool
	switch {
	case oneSided || kind != QuadTop:
		floorAnchored = flags&LineLowerUnpegged != 0
	default:
		floorAnchored = flags&LineUpperUnpegged == 0
	}

	if floorAnchored {
		return UVRect{
			{offU, offV},
			{offU, lenV + offV},
			{lenU + offU, lenV + offV},
			{lenU + offU, offV},
		}
	}
	return UVRect{
		{offU, 1 - lenV + offV},
		{offU, 1 + offV},
		{lenU + offU, 1 + offV},
		{lenU + offU, 1 - lenV + offV},
	}
}
