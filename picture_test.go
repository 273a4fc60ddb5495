package wad

import (
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalette(t *testing.T) {
	data := append(playpal(), playpal()...)
	palettes, err := ReadPalettes(Lump{Name: "PLAYPAL", data: data})
	require.NoError(t, err)
	require.Len(t, palettes, 2)

	c, err := palettes[0].Color(10)
	require.NoError(t, err)
	assert.Equal(t, RGB{10, 245, 5}, c)
	assert.Equal(t, color.NRGBA{10, 245, 5, 255}, c.NRGBA())

	_, err = palettes[0].Color(256)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = palettes[0].Color(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ReadPalettes(Lump{Name: "PLAYPAL", data: make([]byte, 10)})
	assert.ErrorIs(t, err, ErrMalformedRecordLump)
}

func TestWADPalette(t *testing.T) {
	w := newWAD("IWAD").add("PLAYPAL", playpal()).parse(t)
	pal, err := w.Palette(0)
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 0, 127}, pal[255])

	_, err = w.Palette(1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = newWAD("PWAD").add("A", nil).parse(t).Palette(0)
	assert.ErrorIs(t, err, ErrUnknownLump)
}

func TestFlat(t *testing.T) {
	pixels := make([]byte, FlatWidth*FlatHeight)
	pixels[1] = 7
	pal, err := ReadPalettes(Lump{data: playpal()})
	require.NoError(t, err)

	flat, err := DecodeFlat("FLOOR4_8", 0, pixels)
	require.NoError(t, err)
	assert.False(t, flat.Transparent)
	img := flat.Image(pal[0])
	require.NotNil(t, img)
	assert.Equal(t, color.NRGBA{7, 248, 3, 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, img.NRGBAAt(63, 63))

	sky, err := DecodeFlat(SkyFlatName, 1, pixels)
	require.NoError(t, err)
	assert.True(t, sky.Transparent)
	assert.Nil(t, sky.Image(pal[0]))

	_, err = DecodeFlat("SHORT", 0, make([]byte, 100))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodePicture(t *testing.T) {
	cols := [][]int16{
		{1, 2, Unset, 4},
		{Unset, Unset, Unset, Unset},
		{9, 9, 9, 9},
	}
	pic, err := DecodePicture("TEST", picture(3, 4, cols))
	require.NoError(t, err)

	assert.Equal(t, 3, pic.Width)
	assert.Equal(t, 4, pic.Height)
	for x, c := range cols {
		assert.Equal(t, Column(c), pic.Columns[x])
	}
	assert.Empty(t, pic.CorruptColumns)
	assert.False(t, pic.Opaque())

	pal, err := ReadPalettes(Lump{data: playpal()})
	require.NoError(t, err)
	img := pic.Image(pal[0], false)
	assert.Equal(t, color.NRGBA{1, 254, 0, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 2).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)

	// Index 0 is a real color, not transparency
	zero, err := DecodePicture("ZERO", picture(1, 1, [][]int16{{0}}))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, zero.Image(pal[0], false).NRGBAAt(0, 0))

	mirrored := pic.Image(pal[0], true)
	assert.Equal(t, img.NRGBAAt(0, 0), mirrored.NRGBAAt(2, 0))
	assert.Equal(t, img.NRGBAAt(2, 3), mirrored.NRGBAAt(0, 3))
}

func TestColumnWithoutTerminator(t *testing.T) {
	// One column whose posts never end: each post is one pixel at row 0, repeated past
	// the column height, and the lump simply stops
	data := encode(binPatchImageHeader{Width: 1, Height: 4})
	data = binary.LittleEndian.AppendUint32(data, 12)
	for i := 0; i < 100; i++ {
		data = append(data, 0, 1, 0, 5, 0)
	}

	pic, err := DecodePicture("LOOP", data)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, pic.CorruptColumns)
	assert.Equal(t, Column{5, Unset, Unset, Unset}, pic.Columns[0])
}

func TestColumnOutOfBounds(t *testing.T) {
	data := encode(binPatchImageHeader{Width: 2, Height: 4})
	data = binary.LittleEndian.AppendUint32(data, 16)
	data = binary.LittleEndian.AppendUint32(data, 9999)
	// Post claims 3 pixels but the lump ends after 1
	data = append(data, 1, 3, 0, 7)

	pic, err := DecodePicture("TRUNC", data)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, pic.CorruptColumns)
	assert.Equal(t, Column{Unset, Unset, Unset, Unset}, pic.Columns[0])
	assert.Equal(t, Column{Unset, Unset, Unset, Unset}, pic.Columns[1])

	// Post running past the column height
	data = encode(binPatchImageHeader{Width: 1, Height: 2})
	data = binary.LittleEndian.AppendUint32(data, 12)
	data = append(data, 1, 3, 0, 7, 7, 7, 0, 255)
	pic, err = DecodePicture("TALL", data)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, pic.CorruptColumns)
	assert.Equal(t, Column{Unset, 7}, pic.Columns[0])

	_, err = DecodePicture("HEADER", []byte{1, 2})
	assert.Error(t, err)
}
