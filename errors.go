package wad

import "github.com/pkg/errors"

var (
	// ErrTruncatedDirectory is returned when the lump directory runs past the end of the buffer.
	ErrTruncatedDirectory = errors.New("truncated directory")

	// ErrMalformedRecordLump reports a level lump whose length is not a multiple of its
	// record size. Decoding keeps every full record.
	ErrMalformedRecordLump = errors.New("malformed record lump")

	ErrUnknownLump = errors.New("unknown lump")
	ErrOutOfRange  = errors.New("entity id out of range")

	// ErrCorruptBSP fails a single point location query: a cycle in the node graph,
	// a dangling child id, or a point lying exactly on a partition line.
	ErrCorruptBSP = errors.New("corrupt BSP")

	// ErrCorruptColumnData marks a patch column that ran out of bounds or lacked a
	// terminator within its post limit.
	ErrCorruptColumnData = errors.New("corrupt column data")

	ErrOutOfBounds = errors.New("read out of bounds")
	ErrBadMagic    = errors.New("bad magic")
)
