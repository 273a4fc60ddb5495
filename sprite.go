package wad

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FrameKey identifies one image of a sprite: an animation frame letter and a viewing
// rotation, 1 to 8, or 0 for a picture used from every angle.
type FrameKey struct {
	Frame    byte
	Rotation int
}

func (k FrameKey) String() string {
	return string([]byte{k.Frame, '0' + byte(k.Rotation)})
}

type SpriteFrame struct {
	Key      FrameKey
	Lump     string
	Picture  *Picture
	Mirrored bool // Drawn flipped left to right
}

// Sprites are pictures with a special naming convention. The base name is NNNNFx or
// NNNNFxFx, with x indicating the rotation, x = 0, 1-8. Horizontal flipping is used to save
// space, thus NNNNA2A8 defines a mirrored picture for rotation 8.
type Sprite struct {
	Name   string
	Frames map[FrameKey]*SpriteFrame

	sheet memo[*SpriteSheet]
}

// Frame returns the image for a frame seen from a rotation, falling back to the
// all-angles rotation 0.
func (s *Sprite) Frame(frame byte, rotation int) (*SpriteFrame, bool) {
	if f, ok := s.Frames[FrameKey{frame, rotation}]; ok {
		return f, true
	}
	f, ok := s.Frames[FrameKey{frame, 0}]
	return f, ok
}

// FrameLetters returns the sprite's animation frames in order.
func (s *Sprite) FrameLetters() []byte {
	seen := make(map[byte]struct{})
	for k := range s.Frames {
		seen[k.Frame] = struct{}{}
	}
	letters := maps.Keys(seen)
	slices.Sort(letters)
	return letters
}

// HasRotations reports whether a frame has per-angle images.
func (s *Sprite) HasRotations(frame byte) bool {
	for k := range s.Frames {
		if k.Frame == frame && k.Rotation != 0 {
			return true
		}
	}
	return false
}

// keys returns the frame keys ordered by frame letter, then rotation.
func (s *Sprite) keys() []FrameKey {
	keys := maps.Keys(s.Frames)
	slices.SortFunc(keys, func(a, b FrameKey) int {
		if a.Frame != b.Frame {
			return int(a.Frame) - int(b.Frame)
		}
		return a.Rotation - b.Rotation
	})
	return keys
}

func parseFrameKey(frame, rotation byte) (FrameKey, bool) {
	if frame < 'A' || frame > ']' || rotation < '0' || rotation > '8' {
		return FrameKey{}, false
	}
	return FrameKey{Frame: frame, Rotation: int(rotation - '0')}, true
}

// buildSprites groups the sprite marker range into sprites. Later lumps replace earlier
// ones registered under the same frame and rotation.
func buildSprites(lumps []Lump, picture func(Lump) (*Picture, error)) map[string]*Sprite {
	logger.Debug().Msg("Loading sprites ...")
	sprites := make(map[string]*Sprite)

	for _, lump := range lumps {
		name := strings.ToUpper(lump.Name)
		if len(name) < 6 {
			logger.Warn().Str("lump", lump.Name).Msg("sprite name too short")
			continue
		}
		key, ok := parseFrameKey(name[4], name[5])
		if !ok {
			logger.Warn().Str("lump", lump.Name).Msg("bad sprite frame")
			continue
		}

		// Read lump into Picture format
		pic, err := picture(lump)
		if err != nil {
			logger.Warn().Err(err).Str("lump", lump.Name).Msg("bad sprite picture")
			continue
		}

		spriteName := name[:4]
		sprite, ok := sprites[spriteName]
		if !ok {
			sprite = &Sprite{Name: spriteName, Frames: make(map[FrameKey]*SpriteFrame)}
			sprites[spriteName] = sprite
		}
		sprite.Frames[key] = &SpriteFrame{Key: key, Lump: name, Picture: pic}

		if len(name) >= 8 {
			mirror, ok := parseFrameKey(name[6], name[7])
			if !ok {
				logger.Warn().Str("lump", lump.Name).Msg("bad mirrored sprite frame")
				continue
			}
			sprite.Frames[mirror] = &SpriteFrame{Key: mirror, Lump: name, Picture: pic, Mirrored: true}
		}
	}
	logger.Debug().Int("count", len(sprites)).Msg("Loaded sprites")
	return sprites
}
