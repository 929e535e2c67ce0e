package pers

import (
	"github.com/mogaika/tribes_browser/utils"
)

const PERS_MAGIC = "PERS"

// Header is the persistent object wrapper written in front of every
// serialized engine object.
type Header struct {
	// Block size as stored; writers are not consistent about it, so it is
	// never used to bound reads.
	BlockSize uint32
	ClassName string
	Version   uint32
}

// ReadHeader reads the wrapper and checks that it holds className.
// The name is padded to an even length; the version follows it.
func ReadHeader(c *utils.Cursor, className string) (*Header, error) {
	start := c.Pos()
	magic := c.Read(4)
	if c.Err() != nil {
		return nil, c.Err()
	}
	if string(magic) != PERS_MAGIC {
		return nil, utils.NewFormatError(utils.ErrHeaderMismatch, className, start,
			"magic '%s', expected '%s'", utils.DumpToOneLineString(magic), PERS_MAGIC)
	}

	h := &Header{BlockSize: c.ReadLU32()}
	nameLen := int(c.ReadLU16())
	name := c.Read(nameLen + nameLen&1)
	if c.Err() != nil {
		return nil, c.Err()
	}
	h.ClassName = string(name[:nameLen])
	if h.ClassName != className {
		return nil, utils.NewFormatError(utils.ErrHeaderMismatch, className, start,
			"class name %q", h.ClassName)
	}

	h.Version = c.ReadLU32()
	if c.Err() != nil {
		return nil, c.Err()
	}
	return h, nil
}

// ReadBitHeader is ReadHeader over a bit stream.
func ReadBitHeader(bc *utils.BitCursor, className string) (*Header, error) {
	start := bc.Pos()
	magic := bc.ReadBytes(4)
	if bc.Err() != nil {
		return nil, bc.Err()
	}
	if string(magic) != PERS_MAGIC {
		return nil, utils.NewFormatError(utils.ErrHeaderMismatch, className, start,
			"magic '%s', expected '%s'", utils.DumpToOneLineString(magic), PERS_MAGIC)
	}

	h := &Header{BlockSize: bc.ReadUint(32)}
	nameLen := int(bc.ReadU16())
	name := bc.ReadBytes(nameLen + nameLen&1)
	if bc.Err() != nil {
		return nil, bc.Err()
	}
	h.ClassName = string(name[:nameLen])
	if h.ClassName != className {
		return nil, utils.NewFormatError(utils.ErrHeaderMismatch, className, start,
			"class name %q", h.ClassName)
	}

	h.Version = bc.ReadUint(32)
	if bc.Err() != nil {
		return nil, bc.Err()
	}
	return h, nil
}
