package wad

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Group layers override containers (PWADs) over one base container (IWAD) into a single
// namespace. Later overrides win over earlier ones, and every override wins over the base.
type Group struct {
	mutex     deadlock.RWMutex
	base      *WAD
	overrides []source

	palettes memo[[]*Palette]
	textures memo[map[string]*Texture]
	flats    memo[map[string]*Flat]
	sprites  memo[map[string]*Sprite]

	picturesMutex deadlock.Mutex
	pictures      map[string]*Picture
}

// source is an override container and the key it was loaded under.
type source struct {
	key string
	wad *WAD
}

func NewGroup() *Group {
	return &Group{}
}

// Load parses a container and adds it under a source key. See Add.
func (g *Group) Load(key string, data []byte) (string, error) {
	w, err := Parse(data)
	if err != nil {
		return "", errors.Wrapf(err, "load %s", key)
	}
	return g.Add(key, w), nil
}

// Add adds a parsed container. A base container replaces any previous base. An override
// loaded under a key already in use replaces that override in place; an empty key is
// given a fresh random one. Add returns the key used.
func (g *Group) Add(key string, w *WAD) string {
	g.mutex.Lock()
	if w.Kind == KindBase {
		if g.base != nil {
			logger.Warn().Str("source", key).Msg("replacing base container")
		}
		g.base = w
	} else {
		if key == "" {
			key = uuid.NewString()
		}
		i := slices.IndexFunc(g.overrides, func(s source) bool { return s.key == key })
		if i >= 0 {
			g.overrides[i].wad = w
		} else {
			g.overrides = append(g.overrides, source{key: key, wad: w})
		}
	}
	g.mutex.Unlock()

	// Builds already in flight finish against the old container list
	g.palettes.reset()
	g.textures.reset()
	g.flats.reset()
	g.sprites.reset()
	g.picturesMutex.Lock()
	g.pictures = nil
	g.picturesMutex.Unlock()

	logger.Debug().Str("source", key).Stringer("kind", w.Kind).Msg("Added container")
	return key
}

// Base returns the base container, or nil before one is loaded.
func (g *Group) Base() *WAD {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.base
}

// Sources returns the override keys in load order.
func (g *Group) Sources() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	keys := make([]string, len(g.overrides))
	for i, s := range g.overrides {
		keys[i] = s.key
	}
	return keys
}

// containers returns the base, if any, followed by the overrides in load order.
func (g *Group) containers() []*WAD {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	var wads []*WAD
	if g.base != nil {
		wads = append(wads, g.base)
	}
	for _, s := range g.overrides {
		wads = append(wads, s.wad)
	}
	return wads
}

// resolve returns the container that answers for a name: the latest override holding it,
// else the base.
func (g *Group) resolve(has func(*WAD) bool) (*WAD, bool) {
	wads := g.containers()
	for i := len(wads) - 1; i >= 0; i-- {
		if has(wads[i]) {
			return wads[i], true
		}
	}
	return nil, false
}

// Lump resolves a lump name, overrides first in reverse load order, then the base.
func (g *Group) Lump(name string) (Lump, bool) {
	w, ok := g.resolve(func(w *WAD) bool {
		_, ok := w.Lump(name)
		return ok
	})
	if !ok {
		return Lump{}, false
	}
	return w.Lump(name)
}

// Lumps lists the lumps of every container, base first, in load and directory order.
func (g *Group) Lumps() []Lump {
	var lumps []Lump
	for _, w := range g.containers() {
		lumps = append(lumps, w.lumps...)
	}
	return lumps
}

// LevelNames lists every level in any container.
func (g *Group) LevelNames() []string {
	seen := make(map[string]struct{})
	for _, w := range g.containers() {
		for name := range w.levels {
			seen[name] = struct{}{}
		}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

// Level reads a level from the latest container defining it. Wall textures resolve through
// the whole group.
func (g *Group) Level(name string) (*Level, error) {
	w, ok := g.resolve(func(w *WAD) bool { return w.HasLevel(name) })
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLump, "level %s", name)
	}
	return readLevel(w, name, g)
}

func (g *Group) Palettes() ([]*Palette, error) {
	return g.palettes.get(func() ([]*Palette, error) {
		lump, ok := g.Lump("PLAYPAL")
		if !ok {
			return nil, errors.Wrap(ErrUnknownLump, "PLAYPAL")
		}
		return ReadPalettes(lump)
	})
}

func (g *Group) Palette(id int) (*Palette, error) {
	palettes, err := g.Palettes()
	if err != nil {
		return nil, err
	}
	return paletteAt(palettes, id)
}

// Picture decodes a picture lump resolved through the group.
func (g *Group) Picture(name string) (*Picture, error) {
	name = strings.ToUpper(name)
	g.picturesMutex.Lock()
	if p, ok := g.pictures[name]; ok {
		g.picturesMutex.Unlock()
		return p, nil
	}
	g.picturesMutex.Unlock()

	lump, ok := g.Lump(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLump, "picture %s", name)
	}
	pic, err := DecodePicture(name, lump.Bytes())
	if err != nil {
		return nil, err
	}

	g.picturesMutex.Lock()
	if g.pictures == nil {
		g.pictures = make(map[string]*Picture)
	}
	g.pictures[name] = pic
	g.picturesMutex.Unlock()
	return pic, nil
}

// Textures builds each container's texture definitions against the group's patches and
// merges them, later containers winning per texture name.
func (g *Group) Textures() (map[string]*Texture, error) {
	return g.textures.get(func() (map[string]*Texture, error) {
		textures := make(map[string]*Texture)
		for _, w := range g.containers() {
			defined, err := buildTextures(w, g)
			if err != nil {
				return nil, err
			}
			for name, t := range defined {
				textures[name] = t
			}
		}
		return textures, nil
	})
}

func (g *Group) Texture(name string) (*Texture, error) {
	textures, err := g.Textures()
	if err != nil {
		return nil, err
	}
	return lookup(textures, "texture", name)
}

// Flats merges each container's flats, later containers winning per flat name.
func (g *Group) Flats() (map[string]*Flat, error) {
	return g.flats.get(func() (map[string]*Flat, error) {
		flats := make(map[string]*Flat)
		for _, w := range g.containers() {
			decoded, err := decodeFlats(w.flatLumps())
			if err != nil {
				return nil, err
			}
			for name, f := range decoded {
				flats[name] = f
			}
		}
		return flats, nil
	})
}

func (g *Group) Flat(name string) (*Flat, error) {
	flats, err := g.Flats()
	if err != nil {
		return nil, err
	}
	return lookup(flats, "flat", name)
}

// Sprites merges each container's sprites. A sprite in a later container replaces the
// whole same-named sprite, not single frames.
func (g *Group) Sprites() (map[string]*Sprite, error) {
	return g.sprites.get(func() (map[string]*Sprite, error) {
		sprites := make(map[string]*Sprite)
		for _, w := range g.containers() {
			for name, s := range buildSprites(w.spriteLumps(), decodeLumpPicture) {
				sprites[name] = s
			}
		}
		return sprites, nil
	})
}

func (g *Group) Sprite(name string) (*Sprite, error) {
	sprites, err := g.Sprites()
	if err != nil {
		return nil, err
	}
	return lookup(sprites, "sprite", name)
}

func (g *Group) TextureSize(name string) (int, int, bool) {
	return textureSize(g, name)
}
