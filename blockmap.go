package wad

import (
	"bytes"
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Reject is the sector-to-sector visibility table, one bit per ordered sector pair in
// row-major order, lowest bit first. A set bit means no line of sight exists from the
// first sector to the second.
type Reject struct {
	NumSectors int
	bits       []byte
}

// readReject keeps the packed table as it is stored. A short lump leaves the missing
// pairs visible.
func readReject(lump Lump, numSectors int) (*Reject, error) {
	logger.Debug().Int("sectors", numSectors).Msg("Reading Reject ...")

	data := lump.Bytes()
	var err error
	if need := (numSectors*numSectors + 7) / 8; len(data) < need {
		err = errors.Wrapf(ErrMalformedRecordLump, "REJECT: %d bytes, need %d", len(data), need)
	}
	return &Reject{NumSectors: numSectors, bits: data}, err
}

// Rejected reports whether the table marks sector "to" as unseeable from sector "from".
// Ids outside the table are never rejected.
func (r *Reject) Rejected(from, to int) bool {
	if from < 0 || from >= r.NumSectors || to < 0 || to >= r.NumSectors {
		return false
	}
	cell := from*r.NumSectors + to
	i, j := cell/8, cell%8
	return i < len(r.bits) && r.bits[i]&(1<<j) != 0
}

// Visible is the inverse of Rejected.
func (r *Reject) Visible(from, to int) bool {
	return !r.Rejected(from, to)
}

// BlockSize is the edge length of one blockmap cell in map units.
const BlockSize = 128

type binBlockMapHeader struct {
	OriginX, OriginY int16
	Columns, Rows    int16
}

// BlockMap is a grid of BlockSize squares laid over the map, each listing the linedefs
// that cross it.
type BlockMap struct {
	OriginX, OriginY    int
	NumColumns, NumRows int
	Blocks              []Block
}

type Block struct {
	LineNums []int
}

func readBlockMap(lump Lump) (*BlockMap, error) {
	logger.Debug().Msg("Reading Block Map ...")

	data := lump.Bytes()
	buffer := bytes.NewReader(data)

	var header binBlockMapHeader
	if err := binary.Read(buffer, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "BLOCKMAP header")
	}
	if header.Columns < 0 || header.Rows < 0 {
		return nil, errors.Wrapf(ErrOutOfBounds, "BLOCKMAP size %dx%d", header.Columns, header.Rows)
	}

	// Word offsets from the start of the lump
	offsets := make([]uint16, int(header.Columns)*int(header.Rows))
	if err := binary.Read(buffer, binary.LittleEndian, offsets); err != nil {
		return nil, errors.Wrap(err, "BLOCKMAP offsets")
	}

	blockMap := &BlockMap{
		OriginX:    int(header.OriginX),
		OriginY:    int(header.OriginY),
		NumColumns: int(header.Columns),
		NumRows:    int(header.Rows),
		Blocks:     make([]Block, len(offsets)),
	}

	// Each list opens with a zero word and closes with 0xFFFF
	for i, o := range offsets {
		pos := 2*int(o) + 2
		var lineNums []int
		for {
			lineNum, err := ReadUint16(data, pos)
			if err != nil {
				return nil, errors.Wrapf(err, "BLOCKMAP block %d", i)
			}
			if lineNum == 0xFFFF {
				break
			}
			lineNums = append(lineNums, int(lineNum))
			pos += 2
		}
		blockMap.Blocks[i].LineNums = lineNums
	}
	logger.Debug().Int("blocks", len(blockMap.Blocks)).Msg("Read Block Map")

	return blockMap, nil
}

// Block returns the block at a grid position, or nil outside the grid.
func (b *BlockMap) Block(col, row int) *Block {
	if col < 0 || col >= b.NumColumns || row < 0 || row >= b.NumRows {
		return nil
	}
	return &b.Blocks[row*b.NumColumns+col]
}

// LinesAt returns the linedef ids listed for the block containing a map point.
func (b *BlockMap) LinesAt(x, y float32) []int {
	col := int(math32.Floor((x - float32(b.OriginX)) / BlockSize))
	row := int(math32.Floor((y - float32(b.OriginY)) / BlockSize))
	if block := b.Block(col, row); block != nil {
		return block.LineNums
	}
	return nil
}
