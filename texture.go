package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
)

type binTextureHeader struct {
	TextureName String8
	Masked      int32
	Width       int16
	Height      int16
	Unused      int32 // ColumnDirectory
	NumPatches  int16
}

type binPatch struct {
	XOffset      int16
	YOffset      int16
	PatchNameIdx int16
	Unused1      int16 // StepDir
	Unused2      int16 // ColorMap
}

type Texture struct {
	Name          string  // Texture name and key into the textures map
	Index         int     // Definition order across TEXTURE1..9
	IsMasked      bool    // Declared masked in the definition
	Width, Height int     // total width and height of the map texture
	Patches       []Patch // List of component Patches
	Columns       []Column

	// Transparent is set when any pixel is left uncovered by the patches.
	Transparent bool
}

type Patch struct {
	Name    string
	XOffset int // horizontal offset of patch relative to upper-left of texture
	YOffset int // vertical offset of patch relative to upper-left of texture
	Picture *Picture
}

// assetSource resolves lumps and decoded pictures by name.
type assetSource interface {
	Lump(name string) (Lump, bool)
	Picture(name string) (*Picture, error)
}

// readPatchNames reads the PNAMES lump to populate a slice of patch names
func readPatchNames(lump Lump) ([]string, error) {
	data := lump.Bytes()
	count, err := ReadUint32(data, 0)
	if err != nil {
		return nil, errors.Wrap(err, "PNAMES count")
	}
	names, err := ReadStringArray(data, 4, 8, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "PNAMES")
	}
	for i := range names {
		names[i] = strings.ToUpper(names[i]) // Required for "w94_1" patch
	}
	return names, nil
}

// buildTextures reads the TEXTURE1..9 lumps of defs. Patch names come from the PNAMES of
// defs when it has one, otherwise from src; patch pictures always resolve through src.
func buildTextures(defs *WAD, src assetSource) (map[string]*Texture, error) {
	logger.Debug().Msg("Loading textures ...")

	textures := make(map[string]*Texture)
	var patchNames []string
	for i := 1; i < 10; i++ {
		name := fmt.Sprintf("TEXTURE%v", i)
		lump, ok := defs.Lump(name)
		if !ok {
			continue
		}
		if patchNames == nil {
			pnames, ok := defs.Lump("PNAMES")
			if !ok {
				pnames, ok = src.Lump("PNAMES")
			}
			if !ok {
				return nil, errors.Wrap(ErrUnknownLump, "PNAMES")
			}
			var err error
			if patchNames, err = readPatchNames(pnames); err != nil {
				return nil, err
			}
		}

		logger.Debug().Str("lump", name).Msg("Loading texture definitions ...")
		if err := readTextureLump(lump, patchNames, src, textures); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}
	logger.Debug().Int("count", len(textures)).Msg("Loaded textures")

	return textures, nil
}

func readTextureLump(lump Lump, patchNames []string, src assetSource, textures map[string]*Texture) error {
	data := lump.Bytes()
	count, err := ReadUint32(data, 0)
	if err != nil {
		return err
	}
	offsets, err := ReadInt32Array(data, 4, int(count))
	if err != nil {
		return err
	}

	for _, offset := range offsets {
		if offset < 0 || int(offset) >= len(data) {
			return errors.Wrapf(ErrOutOfBounds, "texture offset %d", offset)
		}
		reader := bytes.NewReader(data[offset:])

		var header binTextureHeader
		if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
			return err
		}
		binPatches := make([]binPatch, max(header.NumPatches, 0))
		if err := binary.Read(reader, binary.LittleEndian, binPatches); err != nil {
			return err
		}

		texture := &Texture{
			Name:     strings.ToUpper(header.TextureName.String()),
			Index:    len(textures),
			IsMasked: header.Masked != 0,
			Width:    max(int(header.Width), 0),
			Height:   max(int(header.Height), 0),
		}
		for _, p := range binPatches {
			idx := int(p.PatchNameIdx)
			if idx < 0 || idx >= len(patchNames) {
				logger.Warn().Str("texture", texture.Name).Int("patch", idx).Msg("patch index out of range")
				continue
			}
			picture, err := src.Picture(patchNames[idx])
			if err != nil {
				logger.Warn().Err(err).Str("texture", texture.Name).Str("patch", patchNames[idx]).Msg("missing patch")
				continue
			}
			texture.Patches = append(texture.Patches, Patch{
				Name:    patchNames[idx],
				XOffset: int(p.XOffset),
				YOffset: int(p.YOffset),
				Picture: picture,
			})
		}
		texture.composite()
		textures[texture.Name] = texture
	}
	return nil
}

// composite draws the patches over an unset canvas in declared order, later patches over
// earlier ones, and records whether any pixel stayed uncovered.
func (t *Texture) composite() {
	t.Columns = make([]Column, t.Width)
	for x := range t.Columns {
		column := make(Column, t.Height)
		for y := range column {
			column[y] = Unset
		}
		t.Columns[x] = column
	}

	for _, p := range t.Patches {
		for px, c := range p.Picture.Columns {
			x := p.XOffset + px
			if x < 0 || x >= t.Width {
				continue
			}
			for py, index := range c {
				y := p.YOffset + py
				if index == Unset || y < 0 || y >= t.Height {
					continue
				}
				t.Columns[x][y] = index
			}
		}
	}

	t.Transparent = false
	for _, c := range t.Columns {
		for _, index := range c {
			if index == Unset {
				t.Transparent = true
				return
			}
		}
	}
}

// Image renders the composited texture through a palette.
func (t *Texture) Image(pal *Palette) *image.NRGBA {
	pic := Picture{Name: t.Name, Width: t.Width, Height: t.Height, Columns: t.Columns}
	return pic.Image(pal, false)
}

// POTSize returns the texture dimensions rounded up to powers of two.
func (t *Texture) POTSize() (int, int) {
	return NextPOT(t.Width), NextPOT(t.Height)
}

// NextPOT returns the smallest power of two not below n.
func NextPOT(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
