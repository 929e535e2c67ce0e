package dis

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack/dig"
	"github.com/mogaika/tribes_browser/pack/dml"
	"github.com/mogaika/tribes_browser/utils"
)

func le(b *bytes.Buffer, vals ...interface{}) {
	for _, v := range vals {
		binary.Write(b, binary.LittleEndian, v)
	}
}

const testNames = "tower.dml\x00tower_0.dig\x00tower_1.dig\x00tower.dil\x00readme.txt\x00"

func interiorFile(lods [][2]uint32) []byte {
	var b bytes.Buffer
	b.WriteString(ITRS_MAGIC)
	le(&b, uint32(0), uint32(1))
	le(&b, uint32(1), [3]uint32{0, 0, uint32(len(lods))})
	le(&b, uint32(len(lods)))
	for i, lod := range lods {
		le(&b, lod[0], lod[1], uint32(i), uint32(0))
	}
	le(&b, uint32(1), uint32(0))
	le(&b, uint32(2), uint32(34), uint32(34))
	le(&b, uint32(len(testNames)))
	b.WriteString(testNames)
	le(&b, uint32(0), uint8(1))
	return b.Bytes()
}

// quad writes a geometry file with one four sided surface of the given material.
func quad(material uint8) []byte {
	var b bytes.Buffer
	b.WriteString("PERS")
	le(&b, uint32(0), uint16(len(dig.GEOMETRY_CLASS)))
	b.WriteString(dig.GEOMETRY_CLASS)
	b.WriteByte(0)
	le(&b, uint32(7), uint32(1), float32(1), [3]float32{}, [3]float32{1, 1, 0})
	le(&b, [9]uint32{1, 0, 0, 0, 0, 4, 4, 4, 0})
	le(&b, [6]uint8{0, material, 63, 63, 0, 0}, uint16(0), uint32(0), uint32(0), uint8(4), uint8(4), uint16(0))
	for i := uint16(0); i < 4; i++ {
		le(&b, i, i)
	}
	le(&b, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{1, 1, 0}, [3]float32{0, 1, 0})
	le(&b, [2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1}, [2]float32{0, 1})
	le(&b, uint32(0), uint32(0))
	return b.Bytes()
}

func materials(names ...string) *dml.MaterialList {
	ml := &dml.MaterialList{Version: 2, DetailCount: 1, MaterialCount: uint32(len(names))}
	for i, name := range names {
		ml.Materials = append(ml.Materials, dml.Material{Index: int32(i), MapFile: name})
	}
	return ml
}

func TestDecodeInterior(t *testing.T) {
	it, err := Decode(interiorFile([][2]uint32{{10, 22}, {100, 10}, {500, 0}}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(it.States) != 1 || len(it.LODs) != 3 || !it.Linked {
		t.Errorf("interior %+v", it)
	}
	if len(it.LightStateNameOffsets) != 2 || it.LightStateNameOffsets[1] != 34 {
		t.Errorf("light state names %v", it.LightStateNameOffsets)
	}
	if names := it.GeometryNames(); len(names) != 2 || names[1] != "tower_1.dig" {
		t.Errorf("GeometryNames()=%v", names)
	}
	if names := it.MaterialListNames(); len(names) != 1 || names[0] != "tower.dml" {
		t.Errorf("MaterialListNames()=%v", names)
	}
	if n := it.Diagnostics.Count(utils.DiagUnknownExtension); n != 1 {
		t.Errorf("%d unknown extension notes; expected 1", n)
	}
	if name, ok := it.NameAt(22); !ok || name != "tower_1.dig" {
		t.Errorf("NameAt(22)=%q,%v", name, ok)
	}
}

var selectLODTests = []struct {
	lods [][2]uint32
	lod  int
	name string
}{
	{[][2]uint32{{10, 22}, {100, 10}, {500, 0}}, 1, "tower_0.dig"},
	{[][2]uint32{{100, 22}, {100, 10}}, 0, "tower_1.dig"},
	{[][2]uint32{{100, 0}}, -1, "tower_0.dig"},
	{nil, -1, "tower_0.dig"},
	{[][2]uint32{{100, 9999}}, -1, "tower_0.dig"},
}

func TestSelectLOD(t *testing.T) {
	for i, test := range selectLODTests {
		it, err := Decode(interiorFile(test.lods), nil)
		if err != nil {
			t.Fatal(err)
		}
		if lod, name := it.SelectLOD(); lod != test.lod || name != test.name {
			t.Errorf("#%d: SelectLOD()=%d,%q; expected %d,%q", i, lod, name, test.lod, test.name)
		}
	}
}

func TestDecodeInteriorErrors(t *testing.T) {
	data := interiorFile(nil)
	copy(data, "XXXX")
	if _, err := Decode(data, nil); !errors.Is(err, utils.ErrHeaderMismatch) {
		t.Errorf("magic err=%v", err)
	}
	data = interiorFile(nil)
	if _, err := Decode(data[:len(data)-2], nil); !errors.Is(err, utils.ErrTruncatedBuffer) {
		t.Errorf("short err=%v", err)
	}
	if _, err := Decode(interiorFile(nil), []byte("PERS")); !errors.Is(err, utils.ErrTruncatedBuffer) {
		t.Errorf("short geometry err=%v", err)
	}
}

func TestNewFromDataLoadsGeometries(t *testing.T) {
	it, err := NewFromData(interiorFile([][2]uint32{{100, 10}}), map[string][]byte{
		"TOWER_0.DIG": quad(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if g, name := it.Geometry(); g == nil || name != "tower_0.dig" {
		t.Errorf("Geometry()=%v,%q", g, name)
	}
	if n := it.Diagnostics.Count(utils.DiagSkippedMesh); n != 1 {
		t.Errorf("%d missing geometry notes; expected 1", n)
	}
}

func TestRender(t *testing.T) {
	it, err := Decode(interiorFile([][2]uint32{{100, 10}}), quad(1))
	if err != nil {
		t.Fatal(err)
	}
	sizer := func(name string) (int, int, bool) {
		return 128, 128, name == "wall.png"
	}
	rm := it.Render(materials("floor.bmp", "wall.bmp"), sizer)
	if rm.TrianglesCount() != 2 || len(rm.Vertices) != 4 {
		t.Fatalf("%d triangles %d vertices", rm.TrianglesCount(), len(rm.Vertices))
	}
	if len(rm.Groups) != 1 || rm.Groups[0].MaterialIndex != 1 {
		t.Errorf("groups %+v", rm.Groups)
	}
	if rm.MaterialTextures[1] != "wall.png" {
		t.Errorf("textures %v", rm.MaterialTextures)
	}
	// fan order: 0 1 2, 0 2 3
	expected := []uint32{0, 1, 2, 0, 2, 3}
	for i := range expected {
		if rm.Indices[i] != expected[i] {
			t.Errorf("indices %v; expected %v", rm.Indices, expected)
			break
		}
	}
	if p := rm.Vertices[3].Position; !p.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("corrected position %v; expected (0,0,-1)", p)
	}
	// scale -(63+1)/128, offset -1/128
	uv := rm.Vertices[1].UV
	if math.Abs(float64(uv[0]-(-1.0/128-0.5))) > 1e-6 || math.Abs(float64(uv[1]-(-1.0/128))) > 1e-6 {
		t.Errorf("uv %v", uv)
	}
}

func TestRenderMaterialFallback(t *testing.T) {
	for _, material := range []uint8{dig.MATERIAL_NONE, 7} {
		it, err := Decode(interiorFile([][2]uint32{{100, 10}}), quad(material))
		if err != nil {
			t.Fatal(err)
		}
		rm := it.Render(materials("floor.bmp"), nil)
		if len(rm.Groups) != 1 || rm.Groups[0].MaterialIndex != 0 {
			t.Errorf("material %d: groups %+v", material, rm.Groups)
		}
		uv := rm.Vertices[1].UV
		if math.Abs(float64(uv[0]-(-1.0/256-0.25))) > 1e-6 {
			t.Errorf("material %d: uv %v", material, uv)
		}
	}
}

func TestRenderWithoutGeometry(t *testing.T) {
	it, err := Decode(interiorFile(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	rm := it.Render(nil, nil)
	if rm.TrianglesCount() != 0 || rm.Diagnostics.Count(utils.DiagSkippedMesh) != 1 {
		t.Errorf("render %+v", rm)
	}
}

func materialListFile(mapFile string) []byte {
	var b bytes.Buffer
	b.WriteString("PERS")
	le(&b, uint32(0), uint16(len(dml.MATERIAL_LIST_CLASS)))
	b.WriteString(dml.MATERIAL_LIST_CLASS)
	if len(dml.MATERIAL_LIST_CLASS)&1 != 0 {
		b.WriteByte(0)
	}
	le(&b, uint32(2), uint32(1), uint32(1))
	le(&b, int32(0), float32(1), int32(0), uint32(0))
	name := make([]byte, 32)
	copy(name, mapFile)
	b.Write(name)
	return b.Bytes()
}

func TestLoadMaterials(t *testing.T) {
	it, err := Decode(interiorFile(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	var asked string
	err = it.LoadMaterials(func(name string) ([]byte, error) {
		asked = name
		return materialListFile("stone.bmp"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if asked != "tower.dml" || it.MaterialList == nil {
		t.Fatalf("asked %q, list %v", asked, it.MaterialList)
	}
	if names := it.MaterialList.TextureNames(); len(names) != 1 || names[0] != "stone.png" {
		t.Errorf("TextureNames()=%v", names)
	}

	it, _ = Decode(interiorFile(nil), nil)
	err = it.LoadMaterials(func(name string) ([]byte, error) {
		return nil, errors.New("gone")
	})
	if err != nil || it.MaterialList != nil || it.Diagnostics.Count(utils.DiagSkippedMesh) != 1 {
		t.Errorf("missing list: err=%v list=%v notes=%v", err, it.MaterialList, it.Diagnostics)
	}

	it, _ = Decode(interiorFile(nil), nil)
	err = it.LoadMaterials(func(name string) ([]byte, error) {
		return []byte("PERS"), nil
	})
	if !errors.Is(err, utils.ErrTruncatedBuffer) {
		t.Errorf("broken list err=%v", err)
	}
}
