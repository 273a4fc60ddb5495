package wad

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

var (
	floorRect   = UVRect{{0, 0}, {0, 0.5}, {1, 0.5}, {1, 0}}
	ceilingRect = UVRect{{0, 0.5}, {0, 1}, {1, 1}, {1, 0.5}}
)

func TestWallUVsOneSided(t *testing.T) {
	uvs := WallUVs(QuadMiddle, 0, true, 64, 64, 0, 0, 64, 64)
	assert.Equal(t, UVRect{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, uvs)

	assert.Equal(t, ceilingRect, WallUVs(QuadMiddle, 0, true, 64, 32, 0, 0, 64, 64))
	assert.Equal(t, floorRect, WallUVs(QuadMiddle, LineLowerUnpegged, true, 64, 32, 0, 0, 64, 64))
	// Upper unpegged does not affect one-sided walls
	assert.Equal(t, ceilingRect, WallUVs(QuadMiddle, LineUpperUnpegged, true, 64, 32, 0, 0, 64, 64))
}

func TestWallUVsTwoSided(t *testing.T) {
	tests := []struct {
		name  string
		kind  QuadKind
		flags uint16
		want  UVRect
	}{
		{"top pegged", QuadTop, 0, floorRect},
		{"top unpegged", QuadTop, LineUpperUnpegged, ceilingRect},
		{"top ignores lower flag", QuadTop, LineLowerUnpegged, floorRect},
		{"bottom pegged", QuadBottom, 0, ceilingRect},
		{"bottom unpegged", QuadBottom, LineLowerUnpegged, floorRect},
		{"bottom ignores upper flag", QuadBottom, LineUpperUnpegged, ceilingRect},
		{"middle pegged", QuadMiddle, 0, ceilingRect},
		{"middle unpegged", QuadMiddle, LineLowerUnpegged, floorRect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WallUVs(tt.kind, tt.flags, false, 64, 32, 0, 0, 64, 64))
		})
	}
}

func TestWallUVsOffsets(t *testing.T) {
	// 128 long, 64 high on a 64x128 texture, offset 32 right and 64 down
	uvs := WallUVs(QuadMiddle, LineLowerUnpegged, true, 128, 64, 32, 64, 64, 128)
	assert.Equal(t, UVRect{{0.5, -0.5}, {0.5, 0}, {2.5, 0}, {2.5, -0.5}}, uvs)

	// Negative heights measure the same span
	uvs = WallUVs(QuadBottom, LineLowerUnpegged, false, 64, -64, 0, 0, 64, 64)
	assert.Equal(t, mgl32.Vec2{0, 1}, uvs[1])
}
