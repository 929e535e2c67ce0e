package dis

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack"
	"github.com/mogaika/tribes_browser/pack/dig"
	"github.com/mogaika/tribes_browser/pack/dml"
	"github.com/mogaika/tribes_browser/utils"
)

func init() {
	pack.SetHandler(EXT_SHAPE, func(src utils.ResourceSource, data []byte) (interface{}, error) {
		it, err := Decode(data, nil)
		if err != nil {
			return nil, err
		}
		if err := it.LoadGeometries(src.Sibling); err != nil {
			return nil, err
		}
		if err := it.LoadMaterials(src.Sibling); err != nil {
			return nil, err
		}
		return it, nil
	})
}

const ITRS_MAGIC = "ITRs"

const (
	STATE_SIZE = 3 * 32
	LOD_SIZE   = 4 * 32
	U32_SIZE   = 32
)

// file kinds an interior name buffer refers to
const (
	EXT_GEOMETRY      = ".dig"
	EXT_MATERIAL_LIST = ".dml"
	EXT_LIGHTING      = ".dil"
	EXT_SHAPE         = ".dis"
)

type State struct {
	NameIndex uint32
	LODIndex  uint32
	LODCount  uint32
}

type LOD struct {
	MinPixels          uint32
	GeometryFileOffset uint32
	LightStateIndex    uint32
	LinkableFaces      uint32
}

// Interior is a decoded interior shape (.dis) with the geometry files it
// references that were available at decode time.
type Interior struct {
	ChunkSize uint32
	Version   uint32

	States                []State
	LODs                  []LOD
	LODLightStateOffsets  []uint32
	LightStateNameOffsets []uint32

	NameBuffer         []byte
	Names              []string
	MaterialListOffset uint32
	Linked             bool

	// keyed by lower case file name
	Geometries   map[string]*dig.Geometry
	MaterialList *dml.MaterialList

	Diagnostics utils.Diagnostics
}

func NewFromBitCursor(bc *utils.BitCursor) (*Interior, error) {
	start := bc.Pos()
	magic := bc.SetKind("interior header").ReadBytes(4)
	if bc.Err() != nil {
		return nil, bc.Err()
	}
	if string(magic) != ITRS_MAGIC {
		return nil, utils.NewFormatError(utils.ErrHeaderMismatch, "interior header", start,
			"magic '%s', expected '%s'", utils.DumpToOneLineString(magic), ITRS_MAGIC)
	}

	it := &Interior{
		ChunkSize:  bc.ReadUint(32),
		Version:    bc.ReadUint(32),
		Geometries: make(map[string]*dig.Geometry),
	}

	if count := int(bc.ReadUint(32)); bc.SetKind("state").Require(count, STATE_SIZE) {
		it.States = make([]State, count)
		for i := range it.States {
			it.States[i] = State{
				NameIndex: bc.ReadUint(32),
				LODIndex:  bc.ReadUint(32),
				LODCount:  bc.ReadUint(32),
			}
		}
	}

	if count := int(bc.ReadUint(32)); bc.SetKind("lod").Require(count, LOD_SIZE) {
		it.LODs = make([]LOD, count)
		for i := range it.LODs {
			it.LODs[i] = LOD{
				MinPixels:          bc.ReadUint(32),
				GeometryFileOffset: bc.ReadUint(32),
				LightStateIndex:    bc.ReadUint(32),
				LinkableFaces:      bc.ReadUint(32),
			}
		}
	}

	it.LODLightStateOffsets = readU32Array(bc.SetKind("lod light state"))
	it.LightStateNameOffsets = readU32Array(bc.SetKind("light state name"))

	if size := int(bc.SetKind("name buffer").ReadUint(32)); bc.Require(size, 8) {
		it.NameBuffer = bc.ReadBytes(size)
	}

	bc.SetKind("interior trailer")
	it.MaterialListOffset = bc.ReadUint(32)
	it.Linked = bc.ReadU8() != 0

	if bc.Err() != nil {
		return nil, bc.Err()
	}

	it.Names = utils.SplitZStrings(it.NameBuffer)
	for i, name := range it.Names {
		switch strings.ToLower(path.Ext(name)) {
		case EXT_GEOMETRY, EXT_MATERIAL_LIST, EXT_LIGHTING, EXT_SHAPE:
		default:
			it.Diagnostics.Add(utils.DiagUnknownExtension, "name", i, "%q", name)
		}
	}
	return it, nil
}

func readU32Array(bc *utils.BitCursor) []uint32 {
	count := int(bc.ReadUint(32))
	if !bc.Require(count, U32_SIZE) {
		return nil
	}
	result := make([]uint32, count)
	for i := range result {
		result[i] = bc.ReadUint(32)
	}
	return result
}

// Decode reads an interior and the geometry of its selected detail level.
func Decode(b []byte, geometryBytes []byte) (*Interior, error) {
	it, err := NewFromBitCursor(utils.NewBitCursor("interior", b))
	if err != nil {
		return nil, errors.Wrapf(err, "Error decoding %s", ITRS_MAGIC)
	}
	if geometryBytes == nil {
		return it, nil
	}
	_, name := it.SelectLOD()
	if name == "" {
		name = "geometry" + EXT_GEOMETRY
	}
	g, err := dig.NewFromData(geometryBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "Geometry %q", name)
	}
	it.Geometries[strings.ToLower(name)] = g
	return it, nil
}

// NewFromData reads an interior and every referenced geometry present in
// files. Lookups ignore case; missing files are noted, not fatal.
func NewFromData(b []byte, files map[string][]byte) (*Interior, error) {
	it, err := Decode(b, nil)
	if err != nil {
		return nil, err
	}
	lowered := make(map[string][]byte, len(files))
	for name, data := range files {
		lowered[strings.ToLower(name)] = data
	}
	err = it.LoadGeometries(func(name string) ([]byte, error) {
		if data, ok := lowered[strings.ToLower(name)]; ok {
			return data, nil
		}
		return nil, os.ErrNotExist
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// LoadGeometries decodes every geometry file the name buffer lists and read
// can provide. Files read fails on are noted; broken files are fatal.
func (it *Interior) LoadGeometries(read func(name string) ([]byte, error)) error {
	for i, name := range it.GeometryNames() {
		data, err := read(name)
		if err != nil {
			it.Diagnostics.Add(utils.DiagSkippedMesh, "geometry", i, "%q not provided: %v", name, err)
			continue
		}
		g, err := dig.NewFromData(data)
		if err != nil {
			return errors.Wrapf(err, "Geometry %q", name)
		}
		it.Geometries[strings.ToLower(name)] = g
	}
	return nil
}

// LoadMaterials decodes the first material list the name buffer lists.
func (it *Interior) LoadMaterials(read func(name string) ([]byte, error)) error {
	names := it.MaterialListNames()
	if len(names) == 0 {
		return nil
	}
	data, err := read(names[0])
	if err != nil {
		it.Diagnostics.Add(utils.DiagSkippedMesh, "material list", 0, "%q not provided: %v", names[0], err)
		return nil
	}
	ml, err := dml.NewFromData(data)
	if err != nil {
		return errors.Wrapf(err, "Material list %q", names[0])
	}
	it.MaterialList = ml
	return nil
}

// NameAt returns the zero terminated name starting at a name buffer offset.
func (it *Interior) NameAt(offset uint32) (string, bool) {
	return utils.ZStringAt(it.NameBuffer, int(offset))
}

func (it *Interior) namesWithExt(ext string) []string {
	result := make([]string, 0)
	for _, name := range it.Names {
		if strings.EqualFold(path.Ext(name), ext) {
			result = append(result, name)
		}
	}
	return result
}

func (it *Interior) GeometryNames() []string {
	return it.namesWithExt(EXT_GEOMETRY)
}

func (it *Interior) MaterialListNames() []string {
	return it.namesWithExt(EXT_MATERIAL_LIST)
}

// SelectLOD picks the detail level with the most min pixels whose geometry
// name is a .dig file. When no level qualifies, lod is -1 and name is the
// first geometry file listed, if any.
func (it *Interior) SelectLOD() (lod int, name string) {
	lod = -1
	for i := range it.LODs {
		if lod != -1 && it.LODs[i].MinPixels <= it.LODs[lod].MinPixels {
			continue
		}
		n, ok := it.NameAt(it.LODs[i].GeometryFileOffset)
		if ok && strings.EqualFold(path.Ext(n), EXT_GEOMETRY) {
			lod, name = i, n
		}
	}
	if lod == -1 {
		if names := it.GeometryNames(); len(names) != 0 {
			name = names[0]
		}
	}
	return lod, name
}

// Geometry returns the decoded geometry of the selected detail level.
func (it *Interior) Geometry() (*dig.Geometry, string) {
	_, name := it.SelectLOD()
	return it.Geometries[strings.ToLower(name)], name
}
