package wad

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/repeale/fp-go/option"
	"golang.org/x/exp/slices"
)

// DefaultRaycastLength is used when Raycast is given a non-positive length.
const DefaultRaycastLength = 5000

// Hit is one segment struck by a ray.
type Hit struct {
	Segment  int
	Linedef  int
	Point    mgl32.Vec2
	Distance float32

	// Traversal is how far the ray may continue past this hit: Distance for a two-sided
	// line, +Inf for a one-sided line, which blocks sight permanently.
	Traversal float32
}

// Blocking reports whether the struck line ends the ray.
func (h Hit) Blocking() bool {
	return math32.IsInf(h.Traversal, 1)
}

func cross(a, b mgl32.Vec2) float32 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Intersect intersects the segment p..p+d with the segment q..q+s. Parallel and
// collinear pairs never intersect.
func Intersect(p, d, q, s mgl32.Vec2) (mgl32.Vec2, bool) {
	denom := cross(d, s)
	if denom == 0 {
		return mgl32.Vec2{}, false
	}
	qp := q.Sub(p)
	t := cross(qp, s) / denom
	u := cross(qp, d) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return mgl32.Vec2{}, false
	}
	return p.Add(d.Mul(t)), true
}

// SegmentIntersection intersects a ray with one level segment.
func (l *Level) SegmentIntersection(origin, ray mgl32.Vec2, seg int) (mgl32.Vec2, bool) {
	s := l.Segment(seg)
	if opt.IsNone(s) {
		return mgl32.Vec2{}, false
	}
	v1, ok1 := l.vertex(int(s.Value.V1))
	v2, ok2 := l.vertex(int(s.Value.V2))
	if !ok1 || !ok2 {
		return mgl32.Vec2{}, false
	}
	q := v1.Vec()
	return Intersect(origin, ray, q, v2.Vec().Sub(q))
}

// Raycast casts a ray of length maxLen from origin along direction against the segments of
// the subsector holding origin, and returns the hits nearest first. The ray does not
// continue into neighbouring subsectors.
func (l *Level) Raycast(origin, direction mgl32.Vec2, maxLen float32) ([]Hit, error) {
	if direction.Len() == 0 {
		return nil, errors.New("raycast: zero direction")
	}
	if maxLen <= 0 {
		maxLen = DefaultRaycastLength
	}
	ray := direction.Normalize().Mul(maxLen)

	ss, err := l.PointLocateNearest(origin.X(), origin.Y())
	if err != nil {
		return nil, err
	}

	var hits []Hit
	first := int(ss.FirstSegment)
	for seg := first; seg < first+int(ss.NumSegments); seg++ {
		point, ok := l.SegmentIntersection(origin, ray, seg)
		if !ok {
			continue
		}
		lineNum := int(l.Segments[seg].Linedef)
		line := l.Linedef(lineNum)
		if opt.IsNone(line) {
			l.warn(errors.Wrapf(ErrOutOfRange, "segment %d: linedef %d", seg, lineNum))
			continue
		}
		hit := Hit{
			Segment:  seg,
			Linedef:  lineNum,
			Point:    point,
			Distance: point.Sub(origin).Len(),
		}
		hit.Traversal = hit.Distance
		if line.Value.OneSided() {
			hit.Traversal = math32.Inf(1)
		}
		hits = append(hits, hit)
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits, nil
}
