package wad

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// wadBuilder assembles WAD byte buffers for tests.
type wadBuilder struct {
	magic string
	names []string
	lumps [][]byte
}

func newWAD(magic string) *wadBuilder {
	return &wadBuilder{magic: magic}
}

func (b *wadBuilder) add(name string, data []byte) *wadBuilder {
	b.names = append(b.names, name)
	b.lumps = append(b.lumps, data)
	return b
}

func (b *wadBuilder) marker(name string) *wadBuilder {
	return b.add(name, nil)
}

// addRecords encodes fixed-size records into one lump.
func (b *wadBuilder) addRecords(name string, records any) *wadBuilder {
	return b.add(name, encode(records))
}

// addLevel adds a map marker followed by the eight record lumps.
func (b *wadBuilder) addLevel(name string, l testLevel) *wadBuilder {
	b.marker(name)
	b.addRecords("THINGS", l.things)
	b.addRecords("LINEDEFS", l.lines)
	b.addRecords("SIDEDEFS", l.sides)
	b.addRecords("VERTEXES", l.vertexes)
	b.addRecords("SEGS", l.segs)
	b.addRecords("SSECTORS", l.subsectors)
	b.addRecords("NODES", l.nodes)
	b.addRecords("SECTORS", l.sectors)
	return b
}

func (b *wadBuilder) build() []byte {
	var body bytes.Buffer
	offsets := make([]uint32, len(b.lumps))
	for i, l := range b.lumps {
		offsets[i] = uint32(headerSize + body.Len())
		body.Write(l)
	}

	var out bytes.Buffer
	header := binHeader{NumLumps: uint32(len(b.lumps)), InfoTableOfs: uint32(headerSize + body.Len())}
	copy(header.Magic[:], b.magic)
	must(binary.Write(&out, binary.LittleEndian, header))
	out.Write(body.Bytes())
	for i, name := range b.names {
		info := binLumpInfo{Filepos: offsets[i], Size: uint32(len(b.lumps[i])), Name: str8(name)}
		must(binary.Write(&out, binary.LittleEndian, info))
	}
	return out.Bytes()
}

func (b *wadBuilder) parse(t *testing.T) *WAD {
	t.Helper()
	w, err := Parse(b.build())
	require.NoError(t, err)
	return w
}

func encode(v any) []byte {
	var buf bytes.Buffer
	must(binary.Write(&buf, binary.LittleEndian, v))
	return buf.Bytes()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func str8(s string) String8 {
	var n String8
	copy(n[:], s)
	return n
}

type testLevel struct {
	things     []binThing
	lines      []binLine
	sides      []binSide
	vertexes   []binVertex
	segs       []binLineSegment
	subsectors []binSubSector
	nodes      []binNode
	sectors    []binSector
}

// twoRooms is two 64 wide sectors side by side, split at x=64 by a two-sided line.
// Sector 0 spans x 0..64 and sector 1 spans x 64..128. Both have sky ceilings.
func twoRooms() testLevel {
	return testLevel{
		things: []binThing{
			{X: 32, Y: 32, Angle: 90, Type: 1},
			{X: 96, Y: 32, Type: 3004},
			{X: 100, Y: 40, Type: 3004},
		},
		vertexes: []binVertex{
			{0, 0}, {64, 0}, {128, 0}, {128, 64}, {64, 64}, {0, 64},
		},
		lines: []binLine{
			{VertexStart: 0, VertexEnd: 1, Side1: 0, Side2: NoSidedef},  // 0 south, room 0
			{VertexStart: 1, VertexEnd: 2, Side1: 1, Side2: NoSidedef},  // 1 south, room 1
			{VertexStart: 2, VertexEnd: 3, Side1: 2, Side2: NoSidedef},  // 2 east
			{VertexStart: 3, VertexEnd: 4, Side1: 3, Side2: NoSidedef},  // 3 north, room 1
			{VertexStart: 4, VertexEnd: 5, Side1: 4, Side2: NoSidedef},  // 4 north, room 0
			{VertexStart: 5, VertexEnd: 0, Side1: 5, Side2: NoSidedef},  // 5 west
			{VertexStart: 1, VertexEnd: 4, Side1: 6, Side2: 7, Flags: 4}, // 6 shared
		},
		sides: []binSide{
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 0},
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 1},
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 1},
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 1},
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 0},
			{MiddleTexture: str8("WALL"), UpperTexture: str8("-"), LowerTexture: str8("-"), SectorNum: 0},
			{MiddleTexture: str8("-"), UpperTexture: str8("UPPER"), LowerTexture: str8("STEP"), SectorNum: 1},
			{MiddleTexture: str8("-"), UpperTexture: str8("UPPER"), LowerTexture: str8("STEP"), SectorNum: 0},
		},
		segs: []binLineSegment{
			{V1: 5, V2: 0, Linedef: 5},
			{V1: 0, V2: 1, Linedef: 0},
			{V1: 4, V2: 5, Linedef: 4},
			{V1: 4, V2: 1, Linedef: 6, Side: 1},
			{V1: 1, V2: 2, Linedef: 1},
			{V1: 2, V2: 3, Linedef: 2},
			{V1: 3, V2: 4, Linedef: 3},
			{V1: 1, V2: 4, Linedef: 6},
		},
		subsectors: []binSubSector{
			{NumSegments: 4, FirstSegment: 0},
			{NumSegments: 4, FirstSegment: 4},
		},
		// Partition along x=64 pointing north: points to the east have d > 0
		nodes: []binNode{
			{X: 64, Y: 0, DX: 0, DY: 64, LeftChild: SubsectorFlag | 1, RightChild: SubsectorFlag | 0},
		},
		sectors: []binSector{
			{FloorHeight: 0, CeilingHeight: 128, FloorTexture: str8("FLOOR"), CeilingTexture: str8(SkyFlatName), LightLevel: 255, Tag: 7},
			{FloorHeight: 16, CeilingHeight: 96, FloorTexture: str8("FLOOR"), CeilingTexture: str8(SkyFlatName), LightLevel: 128, Tag: 7},
		},
	}
}

// picture encodes a picture lump from columns of palette indices, Unset leaving a gap.
// Every run of set pixels becomes one post.
func picture(width, height int, columns [][]int16) []byte {
	var body bytes.Buffer
	offsets := make([]uint32, width)
	tableEnd := 8 + 4*width
	for x := 0; x < width; x++ {
		offsets[x] = uint32(tableEnd + body.Len())
		col := columns[x]
		for y := 0; y < len(col); {
			if col[y] == Unset {
				y++
				continue
			}
			start := y
			for y < len(col) && col[y] != Unset {
				y++
			}
			body.WriteByte(byte(start))
			body.WriteByte(byte(y - start))
			body.WriteByte(0)
			for _, p := range col[start:y] {
				body.WriteByte(byte(p))
			}
			body.WriteByte(0)
		}
		body.WriteByte(255)
	}

	var out bytes.Buffer
	must(binary.Write(&out, binary.LittleEndian, binPatchImageHeader{Width: int16(width), Height: int16(height)}))
	must(binary.Write(&out, binary.LittleEndian, offsets))
	out.Write(body.Bytes())
	return out.Bytes()
}

// solid returns width columns of height pixels all set to index.
func solid(width, height int, index int16) [][]int16 {
	cols := make([][]int16, width)
	for x := range cols {
		cols[x] = make([]int16, height)
		for y := range cols[x] {
			cols[x][y] = index
		}
	}
	return cols
}

// columns converts raw index columns to picture columns.
func columns(raw [][]int16) []Column {
	cols := make([]Column, len(raw))
	for i, c := range raw {
		cols[i] = c
	}
	return cols
}

// playpal returns a palette lump where index i is (i, 255-i, i/2).
func playpal() []byte {
	data := make([]byte, paletteSize)
	for i := 0; i < 256; i++ {
		data[i*3] = byte(i)
		data[i*3+1] = byte(255 - i)
		data[i*3+2] = byte(i / 2)
	}
	return data
}
