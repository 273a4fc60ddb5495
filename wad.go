// Package wad decodes Doom's data archives, also known as WAD files, into named lumps,
// level models with a BSP spatial index and wall geometry, and palette-expanded raster
// assets. The core never performs I/O: it is handed a byte buffer.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
package wad

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Kind tells a primary asset container (IWAD) from a supplemental one (PWAD).
type Kind int

const (
	KindBase Kind = iota
	KindOverride
)

func (k Kind) String() string {
	if k == KindBase {
		return "base"
	}
	return "override"
}

// Version is inferred from the level names present and is advisory only.
type Version string

const (
	VersionUnknown Version = "unknown"
	VersionDoom1   Version = "doom1"
	VersionDoom2   Version = "doom2"
)

const (
	headerSize         = 12
	directoryEntrySize = 16
)

type binHeader struct {
	Magic        [4]byte
	NumLumps     uint32
	InfoTableOfs uint32
}

type binLumpInfo struct {
	Filepos uint32
	Size    uint32
	Name    String8
}

// Lump is a named byte range of a container.
type Lump struct {
	Name   string
	Index  int // Position in the directory
	Offset int // Absolute position in the buffer
	Size   int
	data   []byte
}

// Bytes returns the lump's view into the container buffer. It must not be modified.
func (l Lump) Bytes() []byte {
	return l.data
}

// WAD is a struct that represents Doom's data archive that contains graphics, sounds, and
// level data. The data is organized as named lumps.
type WAD struct {
	Kind    Kind
	Version Version

	lumps    []Lump
	lumpNums map[string]int // Last occurrence of each name
	levels   map[string]int

	palettes memo[[]*Palette]
	patches  memo[[]*Picture]
	textures memo[map[string]*Texture]
	flats    memo[map[string]*Flat]
	sprites  memo[map[string]*Sprite]

	picturesMutex deadlock.Mutex
	pictures      map[string]*Picture
}

// Parse decodes a WAD directory from the start of data.
func Parse(data []byte) (*WAD, error) {
	return ParseAt(data, 0)
}

// ParseAt decodes a WAD embedded at offset base of data. Lump positions in the directory
// are relative to base. A directory running past the end of the buffer fails with
// ErrTruncatedDirectory and nothing is populated.
func ParseAt(data []byte, base int) (*WAD, error) {
	logger.Debug().Int("base", base).Int("size", len(data)).Msg("Start reading WAD")

	// Read header
	headerBytes, err := span(data, base, headerSize)
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	var header binHeader
	if err := binary.Read(bytes.NewReader(headerBytes), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	wad := &WAD{Version: VersionUnknown}
	switch string(header.Magic[:]) {
	case "IWAD":
		wad.Kind = KindBase
	case "PWAD":
		wad.Kind = KindOverride
	default:
		return nil, errors.Wrapf(ErrBadMagic, "%q", header.Magic[:])
	}

	// Validate directory extent before touching any entry
	dirStart := int64(base) + int64(header.InfoTableOfs)
	dirEnd := dirStart + int64(header.NumLumps)*directoryEntrySize
	if dirEnd > int64(len(data)) {
		return nil, errors.Wrapf(ErrTruncatedDirectory, "%d lumps at offset %d, buffer is %d bytes",
			header.NumLumps, header.InfoTableOfs, len(data))
	}

	// Read info table
	infos := make([]binLumpInfo, header.NumLumps)
	if err := binary.Read(bytes.NewReader(data[dirStart:dirEnd]), binary.LittleEndian, infos); err != nil {
		return nil, err
	}

	lumps := make([]Lump, len(infos))
	lumpNums := make(map[string]int, len(infos))
	levels := make(map[string]int)
	for i, info := range infos {
		name := info.Name.String()
		offset := base + int(info.Filepos)
		lumpData, err := span(data, offset, int(info.Size))
		if err != nil {
			return nil, errors.Wrapf(err, "lump %d %q", i, name)
		}
		lumps[i] = Lump{Name: name, Index: i, Offset: offset, Size: int(info.Size), data: lumpData}

		// A map marker is the lump preceding THINGS
		if strings.EqualFold(name, "THINGS") && i > 0 {
			levels[strings.ToUpper(lumps[i-1].Name)] = i - 1
		}
		lumpNums[strings.ToUpper(name)] = i
	}
	wad.lumps = lumps
	wad.lumpNums = lumpNums
	wad.levels = levels

	if _, ok := lumpNums["E1M1"]; ok {
		wad.Version = VersionDoom1
	} else if _, ok := lumpNums["MAP01"]; ok {
		wad.Version = VersionDoom2
	}

	logger.Debug().
		Stringer("kind", wad.Kind).
		Str("version", string(wad.Version)).
		Int("lumps", len(lumps)).
		Int("levels", len(levels)).
		Msg("Read WAD directory")
	return wad, nil
}

// Lumps lists every lump in directory order.
func (w *WAD) Lumps() []Lump {
	return slices.Clone(w.lumps)
}

// NumLumps returns the directory entry count.
func (w *WAD) NumLumps() int {
	return len(w.lumps)
}

// Lump returns the last lump with the given name. Names are matched case-insensitively.
func (w *WAD) Lump(name string) (Lump, bool) {
	i, ok := w.lumpNums[strings.ToUpper(name)]
	if !ok {
		return Lump{}, false
	}
	return w.lumps[i], true
}

// LumpAt returns the lump at directory position i.
func (w *WAD) LumpAt(i int) (Lump, bool) {
	if i < 0 || i >= len(w.lumps) {
		return Lump{}, false
	}
	return w.lumps[i], true
}

// LumpsNamed returns every lump sharing the given name, in directory order.
func (w *WAD) LumpsNamed(name string) []Lump {
	name = strings.ToUpper(name)
	var found []Lump
	for _, l := range w.lumps {
		if strings.ToUpper(l.Name) == name {
			found = append(found, l)
		}
	}
	return found
}

// Markers returns the lumps strictly between the start and end marker lumps. Nested
// zero-length markers (F1_START and friends) are skipped. Missing markers yield nil.
func (w *WAD) Markers(start, end string) []Lump {
	startNum, ok := w.firstLumpNum(start)
	if !ok {
		return nil
	}
	endNum, ok := w.lumpNums[strings.ToUpper(end)]
	if !ok || endNum <= startNum {
		return nil
	}
	var members []Lump
	for _, l := range w.lumps[startNum+1 : endNum] {
		if l.Size == 0 {
			continue
		}
		members = append(members, l)
	}
	return members
}

func (w *WAD) firstLumpNum(name string) (int, bool) {
	name = strings.ToUpper(name)
	for i, l := range w.lumps {
		if strings.ToUpper(l.Name) == name {
			return i, true
		}
	}
	return 0, false
}

// markers tries each start/end pair in turn and returns the first non-empty range.
func (w *WAD) markers(pairs ...[2]string) []Lump {
	for _, p := range pairs {
		if members := w.Markers(p[0], p[1]); len(members) > 0 {
			return members
		}
	}
	return nil
}

func (w *WAD) flatLumps() []Lump {
	return w.markers([2]string{"F_START", "F_END"}, [2]string{"FF_START", "FF_END"})
}

func (w *WAD) spriteLumps() []Lump {
	return w.markers([2]string{"S_START", "S_END"}, [2]string{"SS_START", "SS_END"})
}

// LevelNames returns a sorted slice of level names found in the WAD archive.
func (w *WAD) LevelNames() []string {
	names := maps.Keys(w.levels)
	slices.Sort(names)
	return names
}

// HasLevel reports whether a map marker with this name precedes a THINGS lump.
func (w *WAD) HasLevel(name string) bool {
	_, ok := w.levels[strings.ToUpper(name)]
	return ok
}

// Level reads level data from the WAD archive. Textures for wall geometry are resolved
// against this WAD.
func (w *WAD) Level(name string) (*Level, error) {
	return readLevel(w, name, w)
}
