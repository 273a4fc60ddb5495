package wad

import (
	"bytes"
	"encoding/binary"
	"image"

	"github.com/pkg/errors"
)

type binPatchImageHeader struct {
	Width, Height, LeftOffset, TopOffset int16
}

// Unset marks a pixel no post covered. It renders transparent.
const Unset = -1

// Column holds one vertical line of palette indices, top down.
type Column []int16

// The doom picture (image) format. Sometimes called a patch, but this code considers a patch to
// be a placement of a picture within a texture.
type Picture struct {
	Name                  string
	Width, Height         int
	LeftOffset, TopOffset int // Allows soulspheres, weapons and keys to float
	Columns               []Column

	// CorruptColumns lists the columns whose post data ran out of bounds or lacked a
	// terminator. Their remaining pixels stay unset.
	CorruptColumns []int
}

// DecodePicture decodes a picture lump: a header, a table of column offsets, and per column
// a run of posts closed by a 255 byte.
func DecodePicture(name string, lump []byte) (*Picture, error) {
	reader := bytes.NewReader(lump)
	var header binPatchImageHeader
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrapf(err, "%s header", name)
	}
	if header.Width < 0 || header.Height < 0 {
		return nil, errors.Wrapf(ErrOutOfBounds, "%s: size %dx%d", name, header.Width, header.Height)
	}

	// Read column offsets
	offsets := make([]uint32, header.Width)
	if err := binary.Read(reader, binary.LittleEndian, offsets); err != nil {
		return nil, errors.Wrapf(err, "%s column offsets", name)
	}

	pic := &Picture{
		Name:       name,
		Width:      int(header.Width),
		Height:     int(header.Height),
		LeftOffset: int(header.LeftOffset),
		TopOffset:  int(header.TopOffset),
		Columns:    make([]Column, header.Width),
	}

	// For each column offset, expand out the posts into columns
	for i, offset := range offsets {
		column := make(Column, pic.Height)
		for j := range column {
			column[j] = Unset
		}
		pic.Columns[i] = column

		if err := decodeColumn(lump, int(offset), column); err != nil {
			logger.Warn().Err(err).Str("name", name).Int("column", i).Msg("corrupt column")
			pic.CorruptColumns = append(pic.CorruptColumns, i)
		}
	}
	return pic, nil
}

// decodeColumn writes the posts starting at offset into column. At most len(column) posts
// are read before a terminator must follow.
func decodeColumn(lump []byte, offset int, column Column) error {
	for posts := 0; ; posts++ {
		topDelta, err := ReadUint8(lump, offset)
		if err != nil {
			return errors.Wrap(ErrCorruptColumnData, err.Error())
		}
		if topDelta == 255 {
			return nil
		}
		if posts >= len(column) {
			return errors.Wrapf(ErrCorruptColumnData, "no terminator after %d posts", posts)
		}

		numPixels, err := ReadUint8(lump, offset+1)
		if err != nil {
			return errors.Wrap(ErrCorruptColumnData, err.Error())
		}
		// Skip the padding byte either side of the pixels
		pixels, err := ReadUint8Array(lump, offset+3, int(numPixels))
		if err != nil {
			return errors.Wrap(ErrCorruptColumnData, err.Error())
		}
		for i, p := range pixels {
			y := int(topDelta) + i
			if y >= len(column) {
				return errors.Wrapf(ErrCorruptColumnData, "post at %d overruns height %d", topDelta, len(column))
			}
			column[y] = int16(p)
		}
		offset += 4 + int(numPixels)
	}
}

// Opaque reports whether every pixel of the picture is set.
func (p *Picture) Opaque() bool {
	for _, c := range p.Columns {
		for _, px := range c {
			if px == Unset {
				return false
			}
		}
	}
	return true
}

// Image renders the picture through a palette, optionally mirrored left to right. Unset
// pixels are fully transparent.
func (p *Picture) Image(pal *Palette, mirrored bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for x, c := range p.Columns {
		dx := x
		if mirrored {
			dx = p.Width - 1 - x
		}
		for y, px := range c {
			if px == Unset {
				continue
			}
			img.SetNRGBA(dx, y, pal[px].NRGBA())
		}
	}
	return img
}
