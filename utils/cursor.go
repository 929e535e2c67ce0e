package utils

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cursor reads little endian values from an in-memory buffer.
// The first failed read is remembered; after that every read returns a zero
// value and Err reports the failure, so decoders only check at record edges.
type Cursor struct {
	buf  []byte
	pos  int
	kind string
	err  error
}

func NewCursor(kind string, b []byte) *Cursor {
	return &Cursor{
		buf:  b,
		kind: kind,
	}
}

// SetKind names the record kind currently being read, used in error context.
func (c *Cursor) SetKind(kind string) *Cursor {
	c.kind = kind
	return c
}

func (c *Cursor) Kind() string   { return c.kind }
func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Size() int      { return len(c.buf) }
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }
func (c *Cursor) Err() error     { return c.err }

func (c *Cursor) String() string {
	return fmt.Sprintf("cursor<%v>[o:0x%x,s:0x%x]", c.kind, c.pos, len(c.buf))
}

// Fail stores err as the sticky error unless one is already set.
func (c *Cursor) Fail(kind error, format string, a ...interface{}) error {
	if c.err == nil {
		c.err = NewFormatError(kind, c.kind, c.pos, format, a...)
	}
	return c.err
}

// Require checks that count records of size bytes fit in the rest of the buffer.
// Counts come straight from the file, so this runs before any allocation.
func (c *Cursor) Require(count int, size int) bool {
	if c.err != nil {
		return false
	}
	if count < 0 {
		c.Fail(ErrTruncatedBuffer, "negative record count %d", count)
		return false
	}
	if size > 0 && count > c.Remaining()/size {
		c.Fail(ErrTruncatedBuffer, "%d records of %d bytes need 0x%x bytes, 0x%x left",
			count, size, int64(count)*int64(size), c.Remaining())
		return false
	}
	return true
}

func (c *Cursor) Read(amount int) []byte {
	if c.err != nil {
		return nil
	}
	if amount < 0 || amount > c.Remaining() {
		c.Fail(ErrTruncatedBuffer, "read of %d bytes, 0x%x left", amount, c.Remaining())
		return nil
	}
	oldPos := c.pos
	c.pos += amount
	return c.buf[oldPos:c.pos]
}

// Peek returns the next amount bytes without moving, or nil if there are fewer.
func (c *Cursor) Peek(amount int) []byte {
	if c.err != nil || amount < 0 || amount > c.Remaining() {
		return nil
	}
	return c.buf[c.pos : c.pos+amount]
}

func (c *Cursor) Skip(amount int) {
	c.Read(amount)
}

func (c *Cursor) ReadLU32() uint32 {
	if b := c.Read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (c *Cursor) ReadLI32() int32 {
	return int32(c.ReadLU32())
}

func (c *Cursor) ReadLU16() uint16 {
	if b := c.Read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (c *Cursor) ReadLI16() int16 {
	return int16(c.ReadLU16())
}

func (c *Cursor) ReadU8() uint8 {
	if b := c.Read(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *Cursor) ReadI8() int8 {
	return int8(c.ReadU8())
}

func (c *Cursor) ReadLF() float32 {
	return math.Float32frombits(c.ReadLU32())
}

func (c *Cursor) ReadVec3() mgl32.Vec3 {
	return mgl32.Vec3{c.ReadLF(), c.ReadLF(), c.ReadLF()}
}

func (c *Cursor) ReadVec2() mgl32.Vec2 {
	return mgl32.Vec2{c.ReadLF(), c.ReadLF()}
}

// ReadStringBuffer reads a fixed size zero padded string.
func (c *Cursor) ReadStringBuffer(size int) string {
	if b := c.Read(size); b != nil {
		return BytesToString(b)
	}
	return ""
}
