package wad

import (
	"image"
	"strings"

	"github.com/pkg/errors"
)

// A flat is an image that is drawn on the floors and ceilings of sectors. Flats are a raw
// collection of pixel values with no offset or other dimension information; each flat is a
// named lump of 4096 bytes representing a 64×64 square.
type Flat struct {
	Name  string
	Index int // Position within the flat marker range
	Data  []byte

	// Transparent is set for the sky flat, which is drawn as open sky rather than pixels.
	Transparent bool
}

const FlatWidth, FlatHeight = 64, 64

// SkyFlatName is the ceiling flat that marks a sector as open to the sky.
const SkyFlatName = "F_SKY1"

// NoTexture is the sidedef texture name for a section that is not drawn.
const NoTexture = "-"

// DecodeFlat reads the 64×64 indexed pixels of a flat lump.
func DecodeFlat(name string, index int, lump []byte) (*Flat, error) {
	data, err := ReadUint8Array(lump, 0, FlatWidth*FlatHeight)
	if err != nil {
		return nil, errors.Wrapf(err, "flat %s", name)
	}
	return &Flat{
		Name:        name,
		Index:       index,
		Data:        data,
		Transparent: strings.EqualFold(name, SkyFlatName),
	}, nil
}

// Image renders the flat through a palette. The sky flat has no image.
func (f *Flat) Image(pal *Palette) *image.NRGBA {
	if f.Transparent {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, FlatWidth, FlatHeight))
	for i, px := range f.Data {
		img.SetNRGBA(i%FlatWidth, i/FlatWidth, pal[px].NRGBA())
	}
	return img
}

// TextureSize reports the fixed flat dimensions.
func (f *Flat) TextureSize() (int, int) {
	return FlatWidth, FlatHeight
}
