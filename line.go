package wad

import (
	"github.com/chewxy/math32"
)

type binLine struct {
	VertexStart, VertexEnd uint16
	Flags                  uint16
	Type                   uint16
	SectorTag              uint16
	Side1, Side2           uint16
}

// NoSidedef in Side2 marks a one-sided line. It is never a sidedef index.
const NoSidedef = 0xFFFF

// Linedef flag bits
const (
	LineBlocking      = 0x0001
	LineBlockMonsters = 0x0002
	LineTwoSided      = 0x0004
	LineUpperUnpegged = 0x0008
	LineLowerUnpegged = 0x0010
	LineSecret        = 0x0020
	LineBlockSound    = 0x0040
	LineNeverMap      = 0x0080
	LineAlwaysMap     = 0x0100
)

type Linedef struct {
	V1, V2       uint16
	Flags        uint16
	Type         uint16
	Tag          uint16
	Side1, Side2 uint16

	// Derived when the level is assembled
	Length    float32
	BoundBox  BoundBox
	SlopeType SlopeType
}

type SlopeType int

const (
	SlopeTypeHorizontal SlopeType = iota
	SlopeTypeVertical
	SlopeTypePositive
	SlopeTypeNegative
)

func translateLine(_ int, l binLine) Linedef {
	return Linedef{
		V1:    l.VertexStart,
		V2:    l.VertexEnd,
		Flags: l.Flags,
		Type:  l.Type,
		Tag:   l.SectorTag,
		Side1: l.Side1,
		Side2: l.Side2,
	}
}

// OneSided reports whether the line has no back side.
func (l *Linedef) OneSided() bool {
	return l.Side2 == NoSidedef
}

func (l *Linedef) UpperUnpegged() bool {
	return l.Flags&LineUpperUnpegged != 0
}

func (l *Linedef) LowerUnpegged() bool {
	return l.Flags&LineLowerUnpegged != 0
}

func (l *Linedef) Secret() bool {
	return l.Flags&LineSecret != 0
}

// derive fills in length, bounding box and slope type from the two end points.
func (l *Linedef) derive(v1, v2 Vertex) {
	dx := float32(v2.X) - float32(v1.X)
	dy := float32(v2.Y) - float32(v1.Y)
	l.Length = math32.Sqrt(dx*dx + dy*dy)

	l.BoundBox.Left = min(v1.X, v2.X)
	l.BoundBox.Right = max(v1.X, v2.X)
	l.BoundBox.Bottom = min(v1.Y, v2.Y)
	l.BoundBox.Top = max(v1.Y, v2.Y)

	switch {
	case dx == 0:
		l.SlopeType = SlopeTypeVertical
	case dy == 0:
		l.SlopeType = SlopeTypeHorizontal
	case dy/dx > 0:
		l.SlopeType = SlopeTypePositive
	default:
		l.SlopeType = SlopeTypeNegative
	}
}
