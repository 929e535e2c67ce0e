package utils

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// BitCursor reads an lsb-first bit stream. Multi byte values are little endian
// and may start at any bit, which is how the interior files are written.
type BitCursor struct {
	buf    []byte
	bitPos int
	kind   string
	err    error
}

func NewBitCursor(kind string, b []byte) *BitCursor {
	return &BitCursor{
		buf:  b,
		kind: kind,
	}
}

func (bc *BitCursor) SetKind(kind string) *BitCursor {
	bc.kind = kind
	return bc
}

func (bc *BitCursor) Kind() string       { return bc.kind }
func (bc *BitCursor) BitPos() int        { return bc.bitPos }
func (bc *BitCursor) Pos() int           { return bc.bitPos / 8 }
func (bc *BitCursor) Size() int          { return len(bc.buf) }
func (bc *BitCursor) RemainingBits() int { return len(bc.buf)*8 - bc.bitPos }
func (bc *BitCursor) EOF() bool          { return bc.RemainingBits() <= 0 }
func (bc *BitCursor) Err() error         { return bc.err }

func (bc *BitCursor) String() string {
	return fmt.Sprintf("bitcursor<%v>[b:0x%x.%d,s:0x%x]", bc.kind, bc.bitPos/8, bc.bitPos%8, len(bc.buf))
}

func (bc *BitCursor) Fail(kind error, format string, a ...interface{}) error {
	if bc.err == nil {
		bc.err = NewFormatError(kind, bc.kind, bc.bitPos/8, format, a...)
	}
	return bc.err
}

// Require checks that count records of recordBits bits fit in the rest of the stream.
func (bc *BitCursor) Require(count int, recordBits int) bool {
	if bc.err != nil {
		return false
	}
	if count < 0 {
		bc.Fail(ErrTruncatedBuffer, "negative record count %d", count)
		return false
	}
	if recordBits > 0 && count > bc.RemainingBits()/recordBits {
		bc.Fail(ErrTruncatedBuffer, "%d records of %d bits do not fit in %d bits",
			count, recordBits, bc.RemainingBits())
		return false
	}
	return true
}

func (bc *BitCursor) need(numBits int) bool {
	if bc.err != nil {
		return false
	}
	if numBits < 0 || numBits > bc.RemainingBits() {
		bc.Fail(ErrTruncatedBuffer, "read of %d bits, %d left", numBits, bc.RemainingBits())
		return false
	}
	return true
}

func (bc *BitCursor) Skip(numBits int) {
	if bc.need(numBits) {
		bc.bitPos += numBits
	}
}

// ReadBits returns ceil(numBits/8) bytes. Each output byte is the low part of
// the current byte shifted down by the in-byte offset merged with the high part
// of the next byte; the last byte is masked to the requested width.
func (bc *BitCursor) ReadBits(numBits int) []byte {
	if !bc.need(numBits) {
		return nil
	}
	out := make([]byte, (numBits+7)/8)
	idx := bc.bitPos / 8
	rsh := uint(bc.bitPos % 8)
	for i := range out {
		cur := bc.buf[idx+i]
		var next byte
		if idx+i+1 < len(bc.buf) {
			next = bc.buf[idx+i+1]
		}
		out[i] = cur>>rsh | next<<(8-rsh)
	}
	if rem := numBits % 8; rem != 0 {
		out[len(out)-1] &= byte(1)<<uint(rem) - 1
	}
	bc.bitPos += numBits
	return out
}

func (bc *BitCursor) ReadUint(numBits int) uint32 {
	if numBits < 0 || numBits > 32 {
		bc.Fail(ErrTruncatedBuffer, "integer width %d out of [0,32]", numBits)
		return 0
	}
	b := bc.ReadBits(numBits)
	if b == nil {
		return 0
	}
	var word [4]byte
	copy(word[:], b)
	return binary.LittleEndian.Uint32(word[:])
}

func (bc *BitCursor) ReadInt32() int32 {
	return int32(bc.ReadUint(32))
}

func (bc *BitCursor) ReadInt16() int16 {
	return int16(bc.ReadUint(16))
}

func (bc *BitCursor) ReadU16() uint16 {
	return uint16(bc.ReadUint(16))
}

func (bc *BitCursor) ReadU8() uint8 {
	return uint8(bc.ReadUint(8))
}

func (bc *BitCursor) ReadFlag() bool {
	if !bc.need(1) {
		return false
	}
	mask := byte(1) << uint(bc.bitPos%8)
	set := bc.buf[bc.bitPos/8]&mask != 0
	bc.bitPos++
	return set
}

func (bc *BitCursor) ReadF32() float32 {
	return math.Float32frombits(bc.ReadUint(32))
}

func (bc *BitCursor) ReadPoint3F() mgl32.Vec3 {
	return mgl32.Vec3{bc.ReadF32(), bc.ReadF32(), bc.ReadF32()}
}

func (bc *BitCursor) ReadPoint2F() mgl32.Vec2 {
	return mgl32.Vec2{bc.ReadF32(), bc.ReadF32()}
}

// ReadSignedFloat maps an unsigned numBits field linearly onto [-1, 1].
func (bc *BitCursor) ReadSignedFloat(numBits int) float32 {
	if numBits < 1 || numBits > 32 {
		bc.Fail(ErrTruncatedBuffer, "float width %d out of [1,32]", numBits)
		return 0
	}
	max := float64(uint64(1)<<uint(numBits) - 1)
	return float32(float64(bc.ReadUint(numBits))*2/max - 1)
}

// ReadNormalVector reads x and y and rebuilds z of a unit vector.
// The sign flag is always present, even when x and y are already too long
// and z is clamped to 0.
func (bc *BitCursor) ReadNormalVector(numBits int) mgl32.Vec3 {
	x := bc.ReadSignedFloat(numBits)
	y := bc.ReadSignedFloat(numBits)
	zsq := 1 - x*x - y*y
	if zsq < 0 {
		bc.ReadFlag()
		return mgl32.Vec3{x, y, 0}
	}
	z := float32(math.Sqrt(float64(zsq)))
	if bc.ReadFlag() {
		z = -z
	}
	return mgl32.Vec3{x, y, z}
}

// ReadString reads a compression flag, an 8 bit length and the characters,
// either raw or huffman coded.
func (bc *BitCursor) ReadString() string {
	compressed := bc.ReadFlag()
	length := int(bc.ReadUint(8))
	if bc.err != nil || length == 0 {
		return ""
	}
	if !compressed {
		b := bc.ReadBits(length * 8)
		if b == nil {
			return ""
		}
		return strings.ToValidUTF8(string(b), "")
	}
	s, err := HuffmanDecode(bc, length)
	if err != nil {
		return ""
	}
	return s
}

func (bc *BitCursor) ReadBytes(numBytes int) []byte {
	return bc.ReadBits(numBytes * 8)
}

// ReadAligned cuts numBytes starting at the current byte into a new cursor.
// A partially consumed byte is included from its start.
func (bc *BitCursor) ReadAligned(numBytes int) *BitCursor {
	start := bc.bitPos / 8
	if bc.err != nil {
		return NewBitCursor(bc.kind, nil)
	}
	if numBytes < 0 || start+numBytes > len(bc.buf) {
		bc.Fail(ErrTruncatedBuffer, "aligned read of %d bytes, 0x%x left", numBytes, len(bc.buf)-start)
		return NewBitCursor(bc.kind, nil)
	}
	bc.bitPos = (start + numBytes) * 8
	return NewBitCursor(bc.kind, bc.buf[start:start+numBytes])
}
