package wad

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Palettes decodes the PLAYPAL lump. The result is computed once.
func (w *WAD) Palettes() ([]*Palette, error) {
	return w.palettes.get(func() ([]*Palette, error) {
		logger.Debug().Msg("Loading PLAYPAL ...")
		lump, ok := w.Lump("PLAYPAL")
		if !ok {
			return nil, errors.Wrap(ErrUnknownLump, "PLAYPAL")
		}
		return ReadPalettes(lump)
	})
}

// Palette returns one of the PLAYPAL palettes, 0 being the normal one.
func (w *WAD) Palette(id int) (*Palette, error) {
	palettes, err := w.Palettes()
	if err != nil {
		return nil, err
	}
	return paletteAt(palettes, id)
}

func paletteAt(palettes []*Palette, id int) (*Palette, error) {
	if id < 0 || id >= len(palettes) {
		return nil, errors.Wrapf(ErrOutOfRange, "palette %d of %d", id, len(palettes))
	}
	return palettes[id], nil
}

// Picture decodes any picture-format lump by name, such as a patch or a status bar graphic.
// Decoded pictures are cached by name.
func (w *WAD) Picture(name string) (*Picture, error) {
	name = strings.ToUpper(name)

	w.picturesMutex.Lock()
	defer w.picturesMutex.Unlock()
	if p, ok := w.pictures[name]; ok {
		return p, nil
	}

	lump, ok := w.Lump(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLump, "picture %s", name)
	}
	pic, err := DecodePicture(name, lump.Bytes())
	if err != nil {
		return nil, err
	}
	if w.pictures == nil {
		w.pictures = make(map[string]*Picture)
	}
	w.pictures[name] = pic
	return pic, nil
}

// Patches decodes every picture listed in PNAMES, skipping any that are missing.
func (w *WAD) Patches() ([]*Picture, error) {
	return w.patches.get(func() ([]*Picture, error) {
		logger.Debug().Msg("Loading patch pictures ...")
		lump, ok := w.Lump("PNAMES")
		if !ok {
			return nil, errors.Wrap(ErrUnknownLump, "PNAMES")
		}
		names, err := readPatchNames(lump)
		if err != nil {
			return nil, err
		}
		var patches []*Picture
		for _, name := range names {
			pic, err := w.Picture(name)
			if err != nil {
				logger.Warn().Err(err).Str("patch", name).Msg("missing patch")
				continue
			}
			patches = append(patches, pic)
		}
		logger.Debug().Int("count", len(patches)).Msg("Loaded patch pictures")
		return patches, nil
	})
}

// Textures composites every wall texture defined in TEXTURE1..9.
func (w *WAD) Textures() (map[string]*Texture, error) {
	return w.textures.get(func() (map[string]*Texture, error) {
		return buildTextures(w, w)
	})
}

// Texture returns a wall texture by name.
func (w *WAD) Texture(name string) (*Texture, error) {
	textures, err := w.Textures()
	if err != nil {
		return nil, err
	}
	return lookup(textures, "texture", name)
}

// Flats decodes the flats between F_START and F_END, or FF_START and FF_END.
func (w *WAD) Flats() (map[string]*Flat, error) {
	return w.flats.get(func() (map[string]*Flat, error) {
		return decodeFlats(w.flatLumps())
	})
}

func decodeFlats(lumps []Lump) (map[string]*Flat, error) {
	logger.Debug().Msg("Loading flats ...")
	flats := make(map[string]*Flat, len(lumps))
	for i, lump := range lumps {
		name := strings.ToUpper(lump.Name)
		flat, err := DecodeFlat(name, i, lump.Bytes())
		if err != nil {
			logger.Warn().Err(err).Str("lump", lump.Name).Msg("bad flat")
			continue
		}
		flats[name] = flat
	}
	logger.Debug().Int("count", len(flats)).Msg("Loaded flats")
	return flats, nil
}

// Flat returns a flat by name.
func (w *WAD) Flat(name string) (*Flat, error) {
	flats, err := w.Flats()
	if err != nil {
		return nil, err
	}
	return lookup(flats, "flat", name)
}

// Sprites assembles the sprites between S_START and S_END, or SS_START and SS_END.
func (w *WAD) Sprites() (map[string]*Sprite, error) {
	return w.sprites.get(func() (map[string]*Sprite, error) {
		return buildSprites(w.spriteLumps(), decodeLumpPicture), nil
	})
}

func decodeLumpPicture(lump Lump) (*Picture, error) {
	return DecodePicture(strings.ToUpper(lump.Name), lump.Bytes())
}

// Sprite returns a sprite by its four letter name.
func (w *WAD) Sprite(name string) (*Sprite, error) {
	sprites, err := w.Sprites()
	if err != nil {
		return nil, err
	}
	return lookup(sprites, "sprite", name)
}

// TextureSize resolves a wall texture, or failing that a flat, to its dimensions.
func (w *WAD) TextureSize(name string) (int, int, bool) {
	return textureSize(w, name)
}

type textureFinder interface {
	Texture(name string) (*Texture, error)
	Flat(name string) (*Flat, error)
}

func textureSize(f textureFinder, name string) (int, int, bool) {
	if t, err := f.Texture(name); err == nil {
		return t.Width, t.Height, true
	}
	if _, err := f.Flat(name); err == nil {
		return FlatWidth, FlatHeight, true
	}
	return 0, 0, false
}

func lookup[T any](assets map[string]*T, kind, name string) (*T, error) {
	a, ok := assets[strings.ToUpper(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLump, "%s %s", kind, name)
	}
	return a, nil
}

// sortedNames returns the keys of an asset map in order.
func sortedNames[T any](assets map[string]*T) []string {
	names := maps.Keys(assets)
	slices.Sort(names)
	return names
}

// SpriteNames lists the sprites in name order.
func (w *WAD) SpriteNames() ([]string, error) {
	sprites, err := w.Sprites()
	if err != nil {
		return nil, err
	}
	return sortedNames(sprites), nil
}
