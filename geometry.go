package wad

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// QuadRef records which sidedef section produced a quad, so a renderer can find and move
// the quad later.
type QuadRef struct {
	Sidedef     int      `cbor:"sidedef"`
	Kind        QuadKind `cbor:"kind"`
	FirstVertex uint32   `cbor:"first"`
}

// TextureGroup is the wall geometry drawn with one texture. Every quad adds four vertices
// and two triangles.
type TextureGroup struct {
	Texture   string       `cbor:"texture"`
	Positions []mgl32.Vec3 `cbor:"positions"`
	Indices   []uint32     `cbor:"indices"`
	UVs       []mgl32.Vec2 `cbor:"uvs"`
	Colors    []mgl32.Vec3 `cbor:"colors"`
	Quads     []QuadRef    `cbor:"quads"`

	width, height int
}

// wallSide bundles what a quad needs to know about the side it faces.
type wallSide struct {
	num    int
	side   *Sidedef
	sector *Sector
}

// BuildWallGeometry generates textured quads for every wall section of the level, grouped
// by texture name. The result is computed once per level.
func (l *Level) BuildWallGeometry() (map[string]*TextureGroup, error) {
	return l.geometry.get(l.buildWallGeometry)
}

func (l *Level) buildWallGeometry() (map[string]*TextureGroup, error) {
	logger.Debug().Str("level", l.Name).Msg("Building wall geometry ...")

	groups := make(map[string]*TextureGroup)
	group := func(name string) *TextureGroup {
		g, ok := groups[name]
		if !ok {
			g = &TextureGroup{Texture: name}
			g.width, g.height = l.textureSize(name)
			groups[name] = g
		}
		return g
	}

	for i := range l.Linedefs {
		line := &l.Linedefs[i]
		v1, ok1 := l.vertex(int(line.V1))
		v2, ok2 := l.vertex(int(line.V2))
		if !ok1 || !ok2 {
			continue
		}
		side1, ok := l.wallSide(int(line.Side1))
		if !ok {
			l.warn(errors.Wrapf(ErrOutOfRange, "linedef %d: front side", i))
			continue
		}

		// A back side that does not resolve is drawn as a one-sided wall
		var side2 wallSide
		if !line.OneSided() {
			if side2, ok = l.wallSide(int(line.Side2)); !ok {
				l.warn(errors.Wrapf(ErrOutOfRange, "linedef %d: back side", i))
			}
		}
		if line.OneSided() || !ok {
			if name := side1.side.MidTexture; name != NoTexture {
				l.addQuad(group(name), line, side1, QuadMiddle, v1, v2,
					side1.sector.FloorHeight, side1.sector.CeilingHeight)
			}
			continue
		}
		s1, s2 := side1.sector, side2.sector

		maxFloor := max(s1.FloorHeight, s2.FloorHeight)
		minCeiling := min(s1.CeilingHeight, s2.CeilingHeight)
		if name := side1.side.MidTexture; name != NoTexture {
			l.addQuad(group(name), line, side1, QuadMiddle, v1, v2, maxFloor, minCeiling)
		}
		if name := side2.side.MidTexture; name != NoTexture {
			l.addQuad(group(name), line, side2, QuadMiddle, v2, v1, maxFloor, minCeiling)
		}

		if name := side1.side.BottomTexture; name != NoTexture {
			l.addQuad(group(name), line, side1, QuadBottom, v1, v2, s1.FloorHeight, s2.FloorHeight)
		}
		if name := side2.side.BottomTexture; name != NoTexture {
			l.addQuad(group(name), line, side2, QuadBottom, v2, v1, s2.FloorHeight, s1.FloorHeight)
		}

		// No upper wall between two sky ceilings
		if s1.Sky() && s2.Sky() {
			continue
		}
		if name := side1.side.TopTexture; name != NoTexture {
			l.addQuad(group(name), line, side1, QuadTop, v1, v2, s2.CeilingHeight, s1.CeilingHeight)
		}
		if name := side2.side.TopTexture; name != NoTexture {
			l.addQuad(group(name), line, side2, QuadTop, v2, v1, s1.CeilingHeight, s2.CeilingHeight)
		}
	}

	logger.Debug().Str("level", l.Name).Int("groups", len(groups)).Msg("Built wall geometry")
	return groups, nil
}

func (l *Level) wallSide(num int) (wallSide, bool) {
	sector, ok := l.sidedefSector(num)
	if !ok {
		return wallSide{}, false
	}
	return wallSide{num: num, side: &l.Sidedefs[num], sector: &l.Sectors[sector]}, true
}

// addQuad appends one wall quad running from a to b between heights bottom and top. The
// vertex color is the light level of the sector the side faces.
func (l *Level) addQuad(g *TextureGroup, line *Linedef, side wallSide, kind QuadKind, a, b Vertex, bottom, top int16) {
	offset := uint32(len(g.Positions))

	ax, ay := float32(a.X), float32(a.Y)
	bx, by := float32(b.X), float32(b.Y)
	g.Positions = append(g.Positions,
		mgl32.Vec3{ax, ay, float32(bottom)},
		mgl32.Vec3{ax, ay, float32(top)},
		mgl32.Vec3{bx, by, float32(top)},
		mgl32.Vec3{bx, by, float32(bottom)},
	)
	g.Indices = append(g.Indices,
		offset, offset+2, offset+1,
		offset, offset+3, offset+2,
	)

	uvs := WallUVs(kind, line.Flags, line.OneSided(), line.Length, float32(top)-float32(bottom),
		side.side.OffsetX, side.side.OffsetY, g.width, g.height)
	g.UVs = append(g.UVs, uvs[:]...)

	light := float32(side.sector.LightLevel) / 255
	color := mgl32.Vec3{light, light, light}
	g.Colors = append(g.Colors, color, color, color, color)

	g.Quads = append(g.Quads, QuadRef{Sidedef: side.num, Kind: kind, FirstVertex: offset})
}

// textureSize resolves a texture's dimensions, falling back to a flat-sized square.
func (l *Level) textureSize(name string) (int, int) {
	if l.textures != nil {
		if w, h, ok := l.textures.TextureSize(name); ok && w > 0 && h > 0 {
			return w, h
		}
	}
	l.warn(errors.Wrapf(ErrUnknownLump, "texture %s", name))
	return FlatWidth, FlatHeight
}

// QuadsBySidedef returns the quads one sidedef contributed, across all texture groups.
func QuadsBySidedef(groups map[string]*TextureGroup, side int) map[QuadKind]QuadRef {
	quads := make(map[QuadKind]QuadRef)
	for _, g := range groups {
		for _, q := range g.Quads {
			if q.Sidedef == side {
				quads[q.Kind] = q
			}
		}
	}
	return quads
}

// EncodeGeometry serializes texture groups to CBOR with sorted map keys.
func EncodeGeometry(groups map[string]*TextureGroup) ([]byte, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(groups)
}
