package dml

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack"
	"github.com/mogaika/tribes_browser/pack/pers"
	"github.com/mogaika/tribes_browser/utils"
)

func init() {
	pack.SetHandler(".DML", func(src utils.ResourceSource, data []byte) (interface{}, error) {
		return NewFromData(data)
	})
}

const MATERIAL_LIST_CLASS = "TS::MaterialList"

const (
	MIN_VERSION = 1
	MAX_VERSION = 4
)

type Material struct {
	Flags   int32
	Alpha   float32
	Index   int32
	RGB     uint32
	MapFile string
	// physical properties, version 3 and up
	Type       int32
	Elasticity float32
	Friction   float32
	// version 4 and up
	DefaultProps int32
}

type MaterialList struct {
	Version       uint32
	DetailCount   uint32
	MaterialCount uint32
	// DetailCount blocks of MaterialCount entries
	Materials []Material
}

func entrySize(version uint32) int {
	size := 4 + 4 + 4 + 4 + 32
	if version == 1 {
		size = 4 + 4 + 4 + 4 + 16
	}
	if version >= 3 {
		size += 12
	}
	if version >= 4 {
		size += 4
	}
	return size
}

func NewFromCursor(c *utils.Cursor) (*MaterialList, error) {
	h, err := pers.ReadHeader(c.SetKind("material list header"), MATERIAL_LIST_CLASS)
	if err != nil {
		return nil, err
	}
	if h.Version < MIN_VERSION || h.Version > MAX_VERSION {
		return nil, utils.NewFormatError(utils.ErrUnsupportedVersion, MATERIAL_LIST_CLASS, c.Pos(),
			"version %d", h.Version)
	}

	ml := &MaterialList{
		Version:       h.Version,
		DetailCount:   c.ReadLU32(),
		MaterialCount: c.ReadLU32(),
	}
	total := uint64(ml.DetailCount) * uint64(ml.MaterialCount)
	if total > uint64(c.Remaining()) {
		return nil, c.Fail(utils.ErrTruncatedBuffer, "%d x %d materials", ml.DetailCount, ml.MaterialCount)
	}
	if !c.SetKind("material").Require(int(total), entrySize(ml.Version)) {
		return nil, c.Err()
	}

	mapFileSize := 32
	if ml.Version == 1 {
		mapFileSize = 16
	}

	ml.Materials = make([]Material, total)
	for i := range ml.Materials {
		m := &ml.Materials[i]
		m.Flags = c.ReadLI32()
		m.Alpha = c.ReadLF()
		m.Index = c.ReadLI32()
		m.RGB = c.ReadLU32()
		m.MapFile = c.ReadStringBuffer(mapFileSize)
		if ml.Version >= 3 {
			m.Type = c.ReadLI32()
			m.Elasticity = c.ReadLF()
			m.Friction = c.ReadLF()
		}
		if ml.Version >= 4 {
			m.DefaultProps = c.ReadLI32()
		}
	}
	if c.Err() != nil {
		return nil, c.Err()
	}
	return ml, nil
}

func NewFromData(b []byte) (*MaterialList, error) {
	ml, err := NewFromCursor(utils.NewCursor("material list", b))
	return ml, errors.Wrapf(err, "Error decoding %s", MATERIAL_LIST_CLASS)
}

// Get returns the material with the given in-file index. Entries are
// usually stored in index order, so that slot is tried first.
func (ml *MaterialList) Get(index int) *Material {
	if index >= 0 && index < len(ml.Materials) && int(ml.Materials[index].Index) == index {
		return &ml.Materials[index]
	}
	for i := range ml.Materials {
		if int(ml.Materials[i].Index) == index {
			return &ml.Materials[i]
		}
	}
	return nil
}

// TextureNames lists texture names for the most detailed material block.
func (ml *MaterialList) TextureNames() []string {
	count := int(ml.MaterialCount)
	if count > len(ml.Materials) {
		count = len(ml.Materials)
	}
	names := make([]string, count)
	for i := range names {
		m := &ml.Materials[i]
		names[i] = TextureName(m.MapFile, int(m.Index))
	}
	return names
}

// TextureName converts a bitmap name from the material list into the png name
// used by the viewer. Slots without a usable name get a readable placeholder.
func TextureName(mapFile string, slot int) string {
	name := strings.TrimSpace(mapFile)
	if name == "" {
		return fmt.Sprintf("[Slot %d: No Texture Specified]", slot)
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return fmt.Sprintf("[Slot %d: Invalid Filename '%s']", slot, name)
	}
	return base + ".png"
}

// IsPlaceholder reports whether name came from an empty or broken slot.
func IsPlaceholder(name string) bool {
	return strings.HasPrefix(name, "[Slot ")
}
