package wad

import (
	"image"
	"image/draw"

	"github.com/fxamacker/cbor/v2"
)

// SheetMaxWidth is the widest a sprite sheet row may grow before a new row starts.
const SheetMaxWidth = 1024

// SheetRect is where one sprite frame was placed on its sheet, in pixels from the top left.
type SheetRect struct {
	Key        FrameKey `cbor:"-"`
	X          int      `cbor:"x"`
	Y          int      `cbor:"y"`
	Width      int      `cbor:"w"`
	Height     int      `cbor:"h"`
	LeftOffset int      `cbor:"left"`
	TopOffset  int      `cbor:"top"`
	Mirrored   bool     `cbor:"mirrored"`
}

// SpriteSheet is the shelf-packed layout of all frames of one sprite.
type SpriteSheet struct {
	Sprite        string
	Width, Height int
	Rects         []SheetRect

	index  map[FrameKey]int
	frames []*SpriteFrame
}

// Sheet packs the sprite's frames into one sheet. The layout is computed once.
func (s *Sprite) Sheet() (*SpriteSheet, error) {
	return s.sheet.get(func() (*SpriteSheet, error) {
		return PackSheet(s), nil
	})
}

// PackSheet places frames left to right in frame order, starting a new row when the next
// frame would pass SheetMaxWidth. Each row is as tall as its tallest frame.
func PackSheet(s *Sprite) *SpriteSheet {
	sheet := &SpriteSheet{Sprite: s.Name, index: make(map[FrameKey]int)}

	x, y, rowHeight := 0, 0, 0
	for _, key := range s.keys() {
		frame := s.Frames[key]
		w, h := frame.Picture.Width, frame.Picture.Height
		if x > 0 && x+w > SheetMaxWidth {
			x, y, rowHeight = 0, y+rowHeight, 0
		}

		sheet.index[key] = len(sheet.Rects)
		sheet.Rects = append(sheet.Rects, SheetRect{
			Key:        key,
			X:          x,
			Y:          y,
			Width:      w,
			Height:     h,
			LeftOffset: frame.Picture.LeftOffset,
			TopOffset:  frame.Picture.TopOffset,
			Mirrored:   frame.Mirrored,
		})
		sheet.frames = append(sheet.frames, frame)

		x += w
		rowHeight = max(rowHeight, h)
		sheet.Width = max(sheet.Width, x)
	}
	sheet.Height = y + rowHeight
	return sheet
}

// Rect returns the placement of a frame.
func (s *SpriteSheet) Rect(key FrameKey) (SheetRect, bool) {
	i, ok := s.index[key]
	if !ok {
		return SheetRect{}, false
	}
	return s.Rects[i], true
}

// UV returns the normalized bottom-left origin of a frame on the sheet, with v measured
// up from the bottom edge, and the frame's normalized size.
func (s *SpriteSheet) UV(key FrameKey) (u, v, du, dv float32, ok bool) {
	r, ok := s.Rect(key)
	if !ok || s.Width == 0 || s.Height == 0 {
		return 0, 0, 0, 0, false
	}
	w, h := float32(s.Width), float32(s.Height)
	return float32(r.X) / w, float32(s.Height-r.Y-r.Height) / h, float32(r.Width) / w, float32(r.Height) / h, true
}

// Image renders every frame onto one transparent sheet.
func (s *SpriteSheet) Image(pal *Palette) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i, r := range s.Rects {
		frame := s.frames[i].Picture.Image(pal, r.Mirrored)
		dst := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
		draw.Draw(img, dst, frame, image.Point{}, draw.Src)
	}
	return img
}

// EncodeIndex serializes the frame placements to CBOR, keyed by frame and rotation
// ("A1", "B0").
func (s *SpriteSheet) EncodeIndex() ([]byte, error) {
	type sheetIndex struct {
		Sprite string               `cbor:"sprite"`
		Width  int                  `cbor:"width"`
		Height int                  `cbor:"height"`
		Frames map[string]SheetRect `cbor:"frames"`
	}
	index := sheetIndex{
		Sprite: s.Sprite,
		Width:  s.Width,
		Height: s.Height,
		Frames: make(map[string]SheetRect, len(s.Rects)),
	}
	for _, r := range s.Rects {
		index.Frames[r.Key.String()] = r
	}
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(index)
}
