package wad

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/repeale/fp-go/option"
)

// errOnPartition is wrapped into ErrCorruptBSP when a point lies exactly on a partition line.
var errOnPartition = errors.New("point on partition line")

// PointLocate descends the BSP from the root, the last node, to the subsector containing
// (x, y). A point lying exactly on a partition line has no defined side and fails the query.
func (l *Level) PointLocate(x, y float32) (*Subsector, error) {
	return l.locate(x, y, true)
}

// PointLocateNearest is PointLocate with points on a partition line routed to the left
// child.
func (l *Level) PointLocateNearest(x, y float32) (*Subsector, error) {
	return l.locate(x, y, false)
}

func (l *Level) locate(x, y float32, strict bool) (*Subsector, error) {
	if len(l.Nodes) == 0 {
		// A single subsector map has no nodes
		if len(l.Subsectors) == 0 {
			return nil, errors.Wrap(ErrCorruptBSP, "no subsectors")
		}
		return &l.Subsectors[0], nil
	}

	nodeNum := len(l.Nodes) - 1
	for range len(l.Nodes) {
		node := &l.Nodes[nodeNum]
		d := node.Side(x, y)

		var child uint16
		switch {
		case math.IsNaN(d):
			return nil, errors.Wrapf(ErrCorruptBSP, "node %d: side of (%v, %v) undefined", nodeNum, x, y)
		case d < 0:
			child = node.RightChild
		case d > 0:
			child = node.LeftChild
		default:
			if strict {
				return nil, errors.Wrapf(ErrCorruptBSP, "node %d: %v (%v, %v)", nodeNum, errOnPartition, x, y)
			}
			logger.Warn().Int("node", nodeNum).Float32("x", x).Float32("y", y).Msg("point on partition line")
			child = node.LeftChild
		}

		if child&SubsectorFlag != 0 {
			id := int(child &^ SubsectorFlag)
			s := l.Subsector(id)
			if opt.IsNone(s) {
				return nil, errors.Wrapf(ErrCorruptBSP, "node %d: subsector %d out of range", nodeNum, id)
			}
			return s.Value, nil
		}
		if int(child) >= len(l.Nodes) {
			return nil, errors.Wrapf(ErrCorruptBSP, "node %d: child %d out of range", nodeNum, child)
		}
		nodeNum = int(child)
	}
	return nil, errors.Wrapf(ErrCorruptBSP, "no leaf within %d steps", len(l.Nodes))
}

// SectorAt returns the sector of the subsector containing a point, taken from the
// sidedef of the subsector's first segment.
func (l *Level) SectorAt(x, y float32) (*Sector, error) {
	ss, err := l.PointLocateNearest(x, y)
	if err != nil {
		return nil, err
	}
	return l.subsectorSector(ss)
}

func (l *Level) subsectorSector(ss *Subsector) (*Sector, error) {
	seg := l.Segment(int(ss.FirstSegment))
	if opt.IsNone(seg) {
		return nil, errors.Wrapf(ErrOutOfRange, "subsector %d: segment %d", ss.Index, ss.FirstSegment)
	}
	line := l.Linedef(int(seg.Value.Linedef))
	if opt.IsNone(line) {
		return nil, errors.Wrapf(ErrOutOfRange, "segment %d: linedef %d", ss.FirstSegment, seg.Value.Linedef)
	}
	side := line.Value.Side1
	if seg.Value.Side != 0 {
		side = line.Value.Side2
	}
	if side == NoSidedef {
		return nil, errors.Wrapf(ErrOutOfRange, "segment %d: no sidedef on side %d", ss.FirstSegment, seg.Value.Side)
	}
	sector, ok := l.sidedefSector(int(side))
	if !ok {
		return nil, errors.Wrapf(ErrOutOfRange, "sidedef %d: sector", side)
	}
	return &l.Sectors[sector], nil
}

// FloorHeightAt returns the floor height under a point, or +Inf when the point cannot be
// located.
func (l *Level) FloorHeightAt(x, y float32) float32 {
	sector, err := l.SectorAt(x, y)
	if err != nil {
		return math32.Inf(1)
	}
	return float32(sector.FloorHeight)
}
