package wad

import (
	"bytes"
	"encoding/binary"
	"image/color"

	"github.com/pkg/errors"
)

type RGB struct {
	Red, Green, Blue uint8
}

// NRGBA returns the color fully opaque.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.Red, G: c.Green, B: c.Blue, A: 0xff}
}

// Palette maps the 256 pixel indices of every image lump to colors.
type Palette [256]RGB

const paletteSize = 256 * 3

// Color looks up one palette entry.
func (p *Palette) Color(index int) (RGB, error) {
	if index < 0 || index >= len(p) {
		return RGB{}, errors.Wrapf(ErrOutOfRange, "palette index %d", index)
	}
	return p[index], nil
}

// ReadPalettes decodes every whole palette in a PLAYPAL lump.
func ReadPalettes(lump Lump) ([]*Palette, error) {
	data := lump.Bytes()
	count := len(data) / paletteSize
	if count == 0 {
		return nil, errors.Wrapf(ErrMalformedRecordLump, "%s: %d bytes", lump.Name, len(data))
	}

	reader := bytes.NewReader(data)
	palettes := make([]*Palette, count)
	for i := range palettes {
		palettes[i] = new(Palette)
		if err := binary.Read(reader, binary.LittleEndian, palettes[i]); err != nil {
			return nil, err
		}
	}
	if len(data)%paletteSize != 0 {
		logger.Warn().Str("lump", lump.Name).Int("bytes", len(data)).Msg("trailing palette bytes")
	}
	return palettes, nil
}
