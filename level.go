package wad

import (
	"strings"

	"github.com/pkg/errors"
	fp "github.com/repeale/fp-go"
	"github.com/repeale/fp-go/option"
	"github.com/sasha-s/go-deadlock"
)

// TextureSource resolves the dimensions of a wall texture or flat by name.
type TextureSource interface {
	TextureSize(name string) (width, height int, ok bool)
}

// Level holds the decoded records of one map. Cross references between records are
// indices into the level's own slices; the accessors return None when an index is out
// of range instead of panicking.
type Level struct {
	Name       string
	Things     []Thing
	Linedefs   []Linedef
	Sidedefs   []Sidedef
	Vertexes   []Vertex
	Segments   []Segment
	Subsectors []Subsector
	Nodes      []Node
	Sectors    []Sector
	Reject     *Reject   // nil when the map has no REJECT lump
	BlockMap   *BlockMap // nil when the map has no BLOCKMAP lump

	textures    TextureSource
	sectorLines [][]int
	adjacent    [][]int
	geometry    memo[map[string]*TextureGroup]

	warningsMutex deadlock.Mutex
	warnings      []error
}

// readLevel decodes the eight record lumps following the map marker, in their fixed
// order, plus the optional REJECT and BLOCKMAP lumps.
func readLevel(w *WAD, name string, textures TextureSource) (*Level, error) {
	logger.Debug().Str("level", name).Msg("Reading Level ...")

	name = strings.ToUpper(name)
	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLump, "level %s", name)
	}

	level := &Level{Name: name, textures: textures}
	for i, kind := range levelLumpOrder {
		lump, ok := w.LumpAt(levelIdx + 1 + i)
		if !ok || !strings.EqualFold(lump.Name, kind.LumpName()) {
			return nil, errors.Wrapf(ErrUnknownLump, "level %s: %s lump missing", name, kind.LumpName())
		}
		if err := level.decode(kind, lump); err != nil {
			if !errors.Is(err, ErrMalformedRecordLump) {
				return nil, errors.Wrapf(err, "level %s", name)
			}
			level.warn(err)
		}
	}

	// Optional lumps
	if lump, ok := w.LumpAt(levelIdx + 9); ok && strings.EqualFold(lump.Name, "REJECT") {
		reject, err := readReject(lump, len(level.Sectors))
		if err != nil {
			level.warn(err)
		}
		level.Reject = reject
	}
	if lump, ok := w.LumpAt(levelIdx + 10); ok && strings.EqualFold(lump.Name, "BLOCKMAP") {
		blockMap, err := readBlockMap(lump)
		if err != nil {
			level.warn(err)
		} else {
			level.BlockMap = blockMap
		}
	}

	level.link()
	return level, nil
}

// decode dispatches one lump to the decoder for its record kind.
func (l *Level) decode(kind RecordKind, lump Lump) error {
	var err error
	switch kind {
	case RecordThing:
		l.Things, err = decodeRecords(lump, kind, translateThing)
	case RecordLinedef:
		l.Linedefs, err = decodeRecords(lump, kind, translateLine)
	case RecordSidedef:
		l.Sidedefs, err = decodeRecords(lump, kind, translateSide)
	case RecordVertex:
		l.Vertexes, err = decodeRecords(lump, kind, translateVertex)
	case RecordSegment:
		l.Segments, err = decodeRecords(lump, kind, translateSegment)
	case RecordSubsector:
		l.Subsectors, err = decodeRecords(lump, kind, translateSubsector)
	case RecordNode:
		l.Nodes, err = decodeRecords(lump, kind, translateNode)
	case RecordSector:
		l.Sectors, err = decodeRecords(lump, kind, translateSector)
	default:
		return errors.Errorf("unknown record kind %d", kind)
	}
	return err
}

// link derives back references and per-sector relations from the decoded records.
func (l *Level) link() {
	logger.Debug().Str("level", l.Name).Msg("Setting references ...")

	l.sectorLines = make([][]int, len(l.Sectors))
	addSectorLine := func(side, line int) {
		if sector, ok := l.sidedefSector(side); ok {
			l.sectorLines[sector] = append(l.sectorLines[sector], line)
		}
	}

	for i := range l.Linedefs {
		line := &l.Linedefs[i]

		v1, ok1 := l.vertex(int(line.V1))
		v2, ok2 := l.vertex(int(line.V2))
		if ok1 && ok2 {
			line.derive(v1, v2)
		} else {
			l.warn(errors.Wrapf(ErrOutOfRange, "linedef %d: vertex %d or %d", i, line.V1, line.V2))
		}

		side1 := int(line.Side1)
		if side1 >= len(l.Sidedefs) {
			l.warn(errors.Wrapf(ErrOutOfRange, "linedef %d: sidedef %d", i, side1))
			continue
		}
		l.Sidedefs[side1].LinedefNum = i
		addSectorLine(side1, i)

		if line.OneSided() {
			continue
		}
		side2 := int(line.Side2)
		if side2 >= len(l.Sidedefs) {
			l.warn(errors.Wrapf(ErrOutOfRange, "linedef %d: sidedef %d", i, side2))
			continue
		}
		l.Sidedefs[side2].LinedefNum = i
		l.Sidedefs[side1].FlipsideNum = side2
		l.Sidedefs[side2].FlipsideNum = side1
		addSectorLine(side2, i)
	}

	// Adjacent sectors, in sidedef order without duplicates
	l.adjacent = make([][]int, len(l.Sectors))
	for i := range l.Sidedefs {
		side := &l.Sidedefs[i]
		if side.FlipsideNum < 0 {
			continue
		}
		own, ok := l.sidedefSector(i)
		if !ok {
			continue
		}
		other, ok := l.sidedefSector(side.FlipsideNum)
		if !ok || containsInt(l.adjacent[own], other) {
			continue
		}
		l.adjacent[own] = append(l.adjacent[own], other)
	}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (l *Level) warn(err error) {
	logger.Warn().Err(err).Str("level", l.Name).Msg("level diagnostic")
	l.warningsMutex.Lock()
	l.warnings = append(l.warnings, err)
	l.warningsMutex.Unlock()
}

// Warnings returns the non-fatal problems met while decoding and building the level.
func (l *Level) Warnings() []error {
	l.warningsMutex.Lock()
	defer l.warningsMutex.Unlock()
	return append([]error(nil), l.warnings...)
}

// Entity access

func entity[T any](list []T, id int) opt.Option[*T] {
	if id < 0 || id >= len(list) {
		return opt.None[*T]()
	}
	return opt.Some(&list[id])
}

func (l *Level) Thing(id int) opt.Option[*Thing]         { return entity(l.Things, id) }
func (l *Level) Linedef(id int) opt.Option[*Linedef]     { return entity(l.Linedefs, id) }
func (l *Level) Sidedef(id int) opt.Option[*Sidedef]     { return entity(l.Sidedefs, id) }
func (l *Level) Vertex(id int) opt.Option[*Vertex]       { return entity(l.Vertexes, id) }
func (l *Level) Segment(id int) opt.Option[*Segment]     { return entity(l.Segments, id) }
func (l *Level) Subsector(id int) opt.Option[*Subsector] { return entity(l.Subsectors, id) }
func (l *Level) Node(id int) opt.Option[*Node]           { return entity(l.Nodes, id) }
func (l *Level) Sector(id int) opt.Option[*Sector]       { return entity(l.Sectors, id) }

// SidedefLinedef returns the line owning a sidedef.
func (l *Level) SidedefLinedef(side int) opt.Option[*Linedef] {
	s := l.Sidedef(side)
	if opt.IsNone(s) {
		return opt.None[*Linedef]()
	}
	return l.Linedef(s.Value.LinedefNum)
}

// Flipside returns the sidedef on the other side of the same linedef.
func (l *Level) Flipside(side int) opt.Option[*Sidedef] {
	s := l.Sidedef(side)
	if opt.IsNone(s) {
		return opt.None[*Sidedef]()
	}
	return l.Sidedef(s.Value.FlipsideNum)
}

func (l *Level) vertex(id int) (Vertex, bool) {
	if id < 0 || id >= len(l.Vertexes) {
		return Vertex{}, false
	}
	return l.Vertexes[id], true
}

func (l *Level) sidedefSector(side int) (int, bool) {
	if side < 0 || side >= len(l.Sidedefs) {
		return 0, false
	}
	sector := int(l.Sidedefs[side].Sector)
	if sector < 0 || sector >= len(l.Sectors) {
		return 0, false
	}
	return sector, true
}

// Queries

// SectorsByTag returns the sectors carrying a tag.
func (l *Level) SectorsByTag(tag int16) []*Sector {
	sectors := make([]*Sector, len(l.Sectors))
	for i := range l.Sectors {
		sectors[i] = &l.Sectors[i]
	}
	return fp.Filter(func(s *Sector) bool { return s.Tag == tag })(sectors)
}

// AdjacentSectors returns the sectors sharing a two-sided line with the given sector.
func (l *Level) AdjacentSectors(sector int) []*Sector {
	if sector < 0 || sector >= len(l.adjacent) {
		return nil
	}
	return fp.Map(func(i int) *Sector { return &l.Sectors[i] })(l.adjacent[sector])
}

// SectorLines returns the ids of the linedefs bounding a sector.
func (l *Level) SectorLines(sector int) []int {
	if sector < 0 || sector >= len(l.sectorLines) {
		return nil
	}
	return l.sectorLines[sector]
}

// SidedefsBySector returns the ids of every sidedef facing into a sector.
func (l *Level) SidedefsBySector(sector int) []int {
	var sides []int
	for i := range l.Sidedefs {
		if int(l.Sidedefs[i].Sector) == sector {
			sides = append(sides, i)
		}
	}
	return sides
}

// ThingsByType returns the things of one type, in lump order.
func (l *Level) ThingsByType(typ int16) []Thing {
	return fp.Filter(func(t Thing) bool { return t.Type == typ })(l.Things)
}

// SubsectorBySegment returns the subsector whose segment run contains a segment.
func (l *Level) SubsectorBySegment(seg int) opt.Option[*Subsector] {
	for i := range l.Subsectors {
		s := &l.Subsectors[i]
		first := int(s.FirstSegment)
		if first <= seg && seg < first+int(s.NumSegments) {
			return opt.Some(s)
		}
	}
	return opt.None[*Subsector]()
}
