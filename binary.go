package wad

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// All multi-byte values in a WAD are little-endian. Readers take an absolute offset and
// never advance a cursor; every read is bounds checked and fails with ErrOutOfBounds.

// String8 is the WAD eight-character name. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

func span(data []byte, offset, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset > len(data) || size > len(data)-offset {
		return nil, errors.Wrapf(ErrOutOfBounds, "%d bytes at offset %d of %d", size, offset, len(data))
	}
	return data[offset : offset+size], nil
}

func readScalar[T constraints.Integer](data []byte, offset, size int, decode func([]byte) T) (T, error) {
	b, err := span(data, offset, size)
	if err != nil {
		return 0, err
	}
	return decode(b), nil
}

func readArray[T constraints.Integer](data []byte, offset, count, size int, decode func([]byte) T) ([]T, error) {
	if count < 0 {
		return nil, errors.Wrapf(ErrOutOfBounds, "negative count %d", count)
	}
	b, err := span(data, offset, count*size)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i := range out {
		out[i] = decode(b[i*size:])
	}
	return out, nil
}

func decodeUint8(b []byte) uint8   { return b[0] }
func decodeInt8(b []byte) int8     { return int8(b[0]) }
func decodeUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func decodeInt16(b []byte) int16   { return int16(binary.LittleEndian.Uint16(b)) }
func decodeUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func decodeInt32(b []byte) int32   { return int32(binary.LittleEndian.Uint32(b)) }

func ReadInt8(data []byte, offset int) (int8, error) {
	return readScalar(data, offset, 1, decodeInt8)
}

func ReadUint8(data []byte, offset int) (uint8, error) {
	return readScalar(data, offset, 1, decodeUint8)
}

func ReadInt16(data []byte, offset int) (int16, error) {
	return readScalar(data, offset, 2, decodeInt16)
}

func ReadUint16(data []byte, offset int) (uint16, error) {
	return readScalar(data, offset, 2, decodeUint16)
}

func ReadInt32(data []byte, offset int) (int32, error) {
	return readScalar(data, offset, 4, decodeInt32)
}

func ReadUint32(data []byte, offset int) (uint32, error) {
	return readScalar(data, offset, 4, decodeUint32)
}

// ReadUint8Array returns a view of count bytes, not a copy.
func ReadUint8Array(data []byte, offset, count int) ([]uint8, error) {
	return span(data, offset, count)
}

func ReadInt8Array(data []byte, offset, count int) ([]int8, error) {
	return readArray(data, offset, count, 1, decodeInt8)
}

func ReadInt16Array(data []byte, offset, count int) ([]int16, error) {
	return readArray(data, offset, count, 2, decodeInt16)
}

func ReadUint16Array(data []byte, offset, count int) ([]uint16, error) {
	return readArray(data, offset, count, 2, decodeUint16)
}

func ReadInt32Array(data []byte, offset, count int) ([]int32, error) {
	return readArray(data, offset, count, 4, decodeInt32)
}

func ReadUint32Array(data []byte, offset, count int) ([]uint32, error) {
	return readArray(data, offset, count, 4, decodeUint32)
}

// ReadString reads bytes until a zero byte or maxLen bytes, whichever comes first.
// The result is not padded back out to maxLen.
func ReadString(data []byte, offset, maxLen int) (string, error) {
	if offset < 0 || maxLen < 0 {
		return "", errors.Wrapf(ErrOutOfBounds, "string at offset %d", offset)
	}
	for i := 0; i < maxLen; i++ {
		if offset+i >= len(data) {
			return "", errors.Wrapf(ErrOutOfBounds, "string at offset %d of %d", offset, len(data))
		}
		if data[offset+i] == 0 {
			return string(data[offset : offset+i]), nil
		}
	}
	return string(data[offset : offset+maxLen]), nil
}

// ReadStringArray reads count strings stored back to back in fields of length bytes.
func ReadStringArray(data []byte, offset, length, count int) ([]string, error) {
	if count < 0 {
		return nil, errors.Wrapf(ErrOutOfBounds, "negative count %d", count)
	}
	if _, err := span(data, offset, length*count); err != nil {
		return nil, err
	}
	strs := make([]string, count)
	for i := range strs {
		s, err := ReadString(data, offset+i*length, length)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}
	return strs, nil
}
