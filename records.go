package wad

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// RecordKind enumerates the eight fixed-size level records, in the order their lumps
// follow a map marker.
type RecordKind int

const (
	RecordThing RecordKind = iota
	RecordLinedef
	RecordSidedef
	RecordVertex
	RecordSegment
	RecordSubsector
	RecordNode
	RecordSector
)

var levelLumpOrder = [...]RecordKind{
	RecordThing,
	RecordLinedef,
	RecordSidedef,
	RecordVertex,
	RecordSegment,
	RecordSubsector,
	RecordNode,
	RecordSector,
}

// LumpName is the lump holding records of this kind.
func (k RecordKind) LumpName() string {
	switch k {
	case RecordThing:
		return "THINGS"
	case RecordLinedef:
		return "LINEDEFS"
	case RecordSidedef:
		return "SIDEDEFS"
	case RecordVertex:
		return "VERTEXES"
	case RecordSegment:
		return "SEGS"
	case RecordSubsector:
		return "SSECTORS"
	case RecordNode:
		return "NODES"
	case RecordSector:
		return "SECTORS"
	}
	return "UNKNOWN"
}

func (k RecordKind) String() string {
	return k.LumpName()
}

// Size is the fixed on-disk byte size of one record.
func (k RecordKind) Size() int {
	switch k {
	case RecordThing:
		return 10
	case RecordLinedef:
		return 14
	case RecordSidedef:
		return 30
	case RecordVertex:
		return 4
	case RecordSegment:
		return 12
	case RecordSubsector:
		return 4
	case RecordNode:
		return 28
	case RecordSector:
		return 26
	}
	return 0
}

// decodeRecords decodes every full record of a lump. A trailing partial record is left
// unread and reported through the returned warning.
func decodeRecords[B any, T any](lump Lump, kind RecordKind, translate func(i int, b B) T) ([]T, error) {
	size := kind.Size()
	data := lump.Bytes()
	count := len(data) / size

	var warning error
	if rest := len(data) % size; rest != 0 {
		warning = errors.Wrapf(ErrMalformedRecordLump, "%s: %d bytes is not a multiple of %d, %d trailing bytes ignored",
			kind, len(data), size, rest)
		logger.Warn().Str("lump", kind.LumpName()).Int("size", len(data)).Int("record", size).Msg("malformed record lump")
	}

	bin := make([]B, count)
	if err := binary.Read(bytes.NewReader(data[:count*size]), binary.LittleEndian, bin); err != nil {
		return nil, err
	}
	records := make([]T, count)
	for i, b := range bin {
		records[i] = translate(i, b)
	}
	logger.Debug().Str("lump", kind.LumpName()).Int("count", count).Msg("Read records")
	return records, warning
}

// Things

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type Thing struct {
	X, Y    int16
	Angle   int16 // Degrees, 0 is east
	Type    int16
	Options int16
}

const (
	ThingSkill1and2      = 0x01
	ThingSkill3          = 0x02
	ThingSkill4and5      = 0x04
	ThingAmbush          = 0x08
	ThingMultiplayerOnly = 0x10
)

func translateThing(_ int, t binThing) Thing {
	return Thing(t)
}

// Radians returns the facing angle in radians.
func (t Thing) Radians() float64 {
	return degreesToRadians(t.Angle)
}

// Ambush reports whether the thing is deaf to sound.
func (t Thing) Ambush() bool {
	return t.Options&ThingAmbush != 0
}

func (t Thing) MultiplayerOnly() bool {
	return t.Options&ThingMultiplayerOnly != 0
}

// Vertexes

type binVertex struct {
	X, Y int16
}

type Vertex struct {
	X, Y int16
}

func translateVertex(_ int, v binVertex) Vertex {
	return Vertex(v)
}

// Vec returns the vertex as a float vector.
func (v Vertex) Vec() mgl32.Vec2 {
	return mgl32.Vec2{float32(v.X), float32(v.Y)}
}

// Sidedefs

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     int16
}

// Sidedef is a wall face. LinedefNum and FlipsideNum are derived when the level is
// assembled; -1 means none.
type Sidedef struct {
	OffsetX, OffsetY int16
	TopTexture       string
	BottomTexture    string
	MidTexture       string
	Sector           int16

	LinedefNum  int
	FlipsideNum int
}

func translateSide(_ int, s binSide) Sidedef {
	return Sidedef{
		OffsetX:       s.XOffset,
		OffsetY:       s.YOffset,
		TopTexture:    s.UpperTexture.String(),
		BottomTexture: s.LowerTexture.String(),
		MidTexture:    s.MiddleTexture.String(),
		Sector:        s.SectorNum,
		LinedefNum:    -1,
		FlipsideNum:   -1,
	}
}

// Segments

type binLineSegment struct {
	V1      uint16
	V2      uint16
	Angle   int16 // Full circle is -32768 to 32767.
	Linedef uint16
	Side    int16 // 0 - same as linedef, 1 - opposite to linedef
	Offset  int16 // Distance along line to start of segment
}

type Segment struct {
	V1, V2  uint16
	Angle   int16
	Linedef uint16
	Side    int16
	Offset  int16
}

func translateSegment(_ int, s binLineSegment) Segment {
	return Segment(s)
}

// Radians converts the binary angle to radians.
func (s Segment) Radians() float64 {
	return bamToRadians(s.Angle)
}

// Subsectors

type binSubSector struct {
	NumSegments  uint16
	FirstSegment int16
}

// Subsector is a convex leaf of the BSP holding a contiguous run of segments.
type Subsector struct {
	Index        int
	NumSegments  uint16
	FirstSegment int16
}

func translateSubsector(i int, s binSubSector) Subsector {
	return Subsector{Index: i, NumSegments: s.NumSegments, FirstSegment: s.FirstSegment}
}

// Nodes

type binBBox struct {
	Top    int16
	Bottom int16
	Left   int16
	Right  int16
}

type BoundBox struct {
	Top, Bottom, Left, Right int16
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundBox) Contains(x, y float32) bool {
	return x >= float32(b.Left) && x <= float32(b.Right) && y >= float32(b.Bottom) && y <= float32(b.Top)
}

type binNode struct {
	X, Y       int16
	DX, DY     int16
	BBoxLeft   binBBox
	BBoxRight  binBBox
	LeftChild  uint16
	RightChild uint16
}

// SubsectorFlag marks a node child id as a leaf subsector id.
const SubsectorFlag = 0x8000

// Node is a BSP partition. LeftChild is the first child on disk and is taken for points
// with a positive side value; RightChild is taken for negative values.
type Node struct {
	X, Y                  int16
	DX, DY                int16
	BBoxLeft, BBoxRight   BoundBox
	LeftChild, RightChild uint16
}

func translateNode(_ int, n binNode) Node {
	return Node{
		X:          n.X,
		Y:          n.Y,
		DX:         n.DX,
		DY:         n.DY,
		BBoxLeft:   BoundBox(n.BBoxLeft),
		BBoxRight:  BoundBox(n.BBoxRight),
		LeftChild:  n.LeftChild,
		RightChild: n.RightChild,
	}
}

// Side returns the signed perpendicular distance of a point to the partition line,
// scaled by the partition direction length. It is computed in float64, which is exact
// for integer points on the int16 map grid.
func (n *Node) Side(x, y float32) float64 {
	return (float64(x)-float64(n.X))*float64(n.DY) - (float64(y)-float64(n.Y))*float64(n.DX)
}

// Sectors

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Special        int16
	Tag            int16
}

type Sector struct {
	Index          int
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   string
	CeilingTexture string
	LightLevel     int16
	Special        int16
	Tag            int16
}

func translateSector(i int, s binSector) Sector {
	return Sector{
		Index:          i,
		FloorHeight:    s.FloorHeight,
		CeilingHeight:  s.CeilingHeight,
		FloorTexture:   s.FloorTexture.String(),
		CeilingTexture: s.CeilingTexture.String(),
		LightLevel:     s.LightLevel,
		Special:        s.Special,
		Tag:            s.Tag,
	}
}

// Sky reports whether the ceiling is open sky.
func (s *Sector) Sky() bool {
	return strings.EqualFold(s.CeilingTexture, SkyFlatName)
}

// degreesToRadians
func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}

const halfScale = 1 << 15

// bamToRadians converts a binary angle, where a full circle is 1<<16, to radians.
func bamToRadians[T constraints.Signed](n T) float64 {
	return float64(n) * math.Pi / halfScale
}
