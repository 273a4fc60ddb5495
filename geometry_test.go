package wad

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSizes map[string][2]int

func (f fixedSizes) TextureSize(name string) (int, int, bool) {
	s, ok := f[name]
	return s[0], s[1], ok
}

func twoRoomsGeometry(t *testing.T, l testLevel, sizes TextureSource) (*Level, map[string]*TextureGroup) {
	t.Helper()
	w := newWAD("IWAD").addLevel("E1M1", l).parse(t)
	level, err := readLevel(w, "E1M1", sizes)
	require.NoError(t, err)
	groups, err := level.BuildWallGeometry()
	require.NoError(t, err)
	return level, groups
}

var twoRoomsSizes = fixedSizes{"WALL": {64, 128}, "STEP": {64, 16}, "UPPER": {64, 32}}

func TestWallGeometry(t *testing.T) {
	_, groups := twoRoomsGeometry(t, twoRooms(), twoRoomsSizes)

	// Six one-sided middles
	walls := groups["WALL"]
	require.NotNil(t, walls)
	assert.Len(t, walls.Positions, 6*4)
	assert.Len(t, walls.Indices, 6*6)
	assert.Len(t, walls.UVs, 6*4)
	assert.Len(t, walls.Colors, 6*4)
	assert.Len(t, walls.Quads, 6)

	// First quad is linedef 0 from (0,0) to (64,0), floor 0 to ceiling 128
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {0, 0, 128}, {64, 0, 128}, {64, 0, 0}}, walls.Positions[:4])
	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, walls.Indices[:6])
	assert.Equal(t, []uint32{4, 6, 5, 4, 7, 6}, walls.Indices[6:12])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, walls.Colors[0])
	assert.Equal(t, QuadRef{Sidedef: 0, Kind: QuadMiddle, FirstVertex: 0}, walls.Quads[0])

	// Both sky ceilings: no upper walls at all
	assert.Nil(t, groups["UPPER"])

	// Bottom quads: side 6 faces sector 1 (floor 16) and runs v1 to v2; side 7 runs back
	steps := groups["STEP"]
	require.NotNil(t, steps)
	require.Len(t, steps.Quads, 2)
	assert.Equal(t, mgl32.Vec3{64, 0, 16}, steps.Positions[0])
	assert.Equal(t, mgl32.Vec3{64, 0, 0}, steps.Positions[1])
	assert.Equal(t, mgl32.Vec3{64, 64, 0}, steps.Positions[4])
	assert.Equal(t, mgl32.Vec3{64, 64, 16}, steps.Positions[5])
	assert.Equal(t, QuadRef{Sidedef: 7, Kind: QuadBottom, FirstVertex: 4}, steps.Quads[1])

	// Light of the sector each side faces
	light := float32(128) / 255
	assert.Equal(t, mgl32.Vec3{light, light, light}, steps.Colors[0])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, steps.Colors[4])

	assert.Nil(t, groups[NoTexture])
}

func TestWallGeometryUpperWalls(t *testing.T) {
	l := twoRooms()
	l.sectors[1].CeilingTexture = str8("CEIL")
	level, groups := twoRoomsGeometry(t, l, twoRoomsSizes)

	upper := groups["UPPER"]
	require.NotNil(t, upper)
	require.Len(t, upper.Quads, 2)

	// Side 6 spans the other sector's ceiling up to its own
	assert.Equal(t, mgl32.Vec3{64, 0, 128}, upper.Positions[0])
	assert.Equal(t, mgl32.Vec3{64, 0, 96}, upper.Positions[1])
	assert.Equal(t, mgl32.Vec3{64, 64, 96}, upper.Positions[4])
	assert.Equal(t, mgl32.Vec3{64, 64, 128}, upper.Positions[5])

	quads := QuadsBySidedef(groups, 7)
	assert.Contains(t, quads, QuadTop)
	assert.Contains(t, quads, QuadBottom)
	assert.NotContains(t, quads, QuadMiddle)

	assert.Empty(t, level.Warnings())
}

func TestWallGeometryMiddleTexture(t *testing.T) {
	l := twoRooms()
	l.sides[6].MiddleTexture = str8("GRATE")
	_, groups := twoRoomsGeometry(t, l, fixedSizes{"WALL": {64, 128}, "STEP": {64, 16}, "GRATE": {64, 64}})

	grate := groups["GRATE"]
	require.NotNil(t, grate)
	require.Len(t, grate.Quads, 1)
	// Between the higher floor and the lower ceiling
	assert.Equal(t, mgl32.Vec3{64, 0, 16}, grate.Positions[0])
	assert.Equal(t, mgl32.Vec3{64, 0, 96}, grate.Positions[1])
}

func TestWallGeometryMissingBackSide(t *testing.T) {
	l := twoRooms()
	l.lines[6].Side2 = 99
	l.sides[6].MiddleTexture = str8("GRATE")
	level, groups := twoRoomsGeometry(t, l, fixedSizes{"WALL": {64, 128}, "STEP": {64, 16}, "GRATE": {64, 64}})

	// Drawn as a one-sided wall of its own sector, floor 16 to ceiling 96
	grate := groups["GRATE"]
	require.NotNil(t, grate)
	require.Len(t, grate.Quads, 1)
	assert.Equal(t, []mgl32.Vec3{{64, 0, 16}, {64, 0, 96}, {64, 64, 96}, {64, 64, 16}}, grate.Positions)
	assert.Nil(t, groups["STEP"])

	warnings := level.Warnings()
	require.NotEmpty(t, warnings)
	assert.ErrorIs(t, warnings[len(warnings)-1], ErrOutOfRange)
}

func TestWallGeometryMissingTexture(t *testing.T) {
	level, groups := twoRoomsGeometry(t, twoRooms(), fixedSizes{})

	require.NotNil(t, groups["WALL"])
	warnings := level.Warnings()
	require.Len(t, warnings, 2)
	assert.ErrorIs(t, warnings[0], ErrUnknownLump)

	// Falls back to a 64x64 texture: 64 long, 128 high wall
	assert.Equal(t, mgl32.Vec2{1, 2}, groups["WALL"].UVs[2].Sub(groups["WALL"].UVs[0]))
}

func TestWallGeometryMemoized(t *testing.T) {
	level, groups := twoRoomsGeometry(t, twoRooms(), twoRoomsSizes)
	again, err := level.BuildWallGeometry()
	require.NoError(t, err)
	assert.Equal(t, groups, again)
	assert.Same(t, groups["WALL"], again["WALL"])
}

func TestEncodeGeometry(t *testing.T) {
	_, groups := twoRoomsGeometry(t, twoRooms(), twoRoomsSizes)

	data, err := EncodeGeometry(groups)
	require.NoError(t, err)

	var decoded map[string]TextureGroup
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, groups["STEP"].Positions, decoded["STEP"].Positions)
	assert.Equal(t, groups["STEP"].Quads, decoded["STEP"].Quads)
}
