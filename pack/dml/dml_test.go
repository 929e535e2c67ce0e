package dml

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/utils"
)

func le(b *bytes.Buffer, vals ...interface{}) {
	for _, v := range vals {
		binary.Write(b, binary.LittleEndian, v)
	}
}

func fixedString(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, s)
	return out
}

func materialList(version uint32, names ...string) []byte {
	var b bytes.Buffer
	b.WriteString("PERS")
	le(&b, uint32(0), uint16(len(MATERIAL_LIST_CLASS)))
	b.WriteString(MATERIAL_LIST_CLASS)
	le(&b, version, uint32(1), uint32(len(names)))
	for i, name := range names {
		le(&b, int32(0), float32(1), int32(i), uint32(0x00ffffff))
		if version == 1 {
			b.Write(fixedString(name, 16))
		} else {
			b.Write(fixedString(name, 32))
		}
		if version >= 3 {
			le(&b, int32(2), float32(0.5), float32(0.25))
		}
		if version >= 4 {
			le(&b, int32(1))
		}
	}
	return b.Bytes()
}

func TestDecodeVersions(t *testing.T) {
	for version := uint32(1); version <= 4; version++ {
		data := materialList(version, "tower.bmp", "", "base1.BMP")
		ml, err := NewFromData(data)
		if err != nil {
			t.Errorf("v%d: %v", version, err)
			continue
		}
		if len(ml.Materials) != 3 || ml.Materials[2].MapFile != "base1.BMP" {
			t.Errorf("v%d: materials %+v", version, ml.Materials)
		}
		if version >= 3 && ml.Materials[0].Friction != 0.25 {
			t.Errorf("v%d: friction %v", version, ml.Materials[0].Friction)
		}
		if version >= 4 && ml.Materials[1].DefaultProps != 1 {
			t.Errorf("v%d: default props %v", version, ml.Materials[1].DefaultProps)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	data := materialList(5, "a.bmp")
	if _, err := NewFromData(data); !errors.Is(err, utils.ErrUnsupportedVersion) {
		t.Errorf("v5 err=%v; expected unsupported version", err)
	}
	data = materialList(2, "a.bmp", "b.bmp")
	if _, err := NewFromData(data[:len(data)-4]); !errors.Is(err, utils.ErrTruncatedBuffer) {
		t.Errorf("short err=%v; expected truncated buffer", err)
	}
}

var textureNameTests = []struct {
	in   string
	slot int
	out  string
}{
	{"tower.bmp", 0, "tower.png"},
	{"Base1.BMP", 1, "Base1.png"},
	{"noext", 2, "noext.png"},
	{"", 3, "[Slot 3: No Texture Specified]"},
	{".bmp", 4, "[Slot 4: Invalid Filename '.bmp']"},
}

func TestTextureName(t *testing.T) {
	for _, test := range textureNameTests {
		if out := TextureName(test.in, test.slot); out != test.out {
			t.Errorf("TextureName(%q,%d)=%q; expected %q", test.in, test.slot, out, test.out)
		}
	}
}

func TestGetAndTextureNames(t *testing.T) {
	ml, err := NewFromData(materialList(4, "a.bmp", "b.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	if m := ml.Get(1); m == nil || m.MapFile != "b.bmp" {
		t.Errorf("Get(1)=%+v", m)
	}
	if m := ml.Get(7); m != nil {
		t.Errorf("Get(7)=%+v; expected nil", m)
	}
	names := ml.TextureNames()
	if len(names) != 2 || names[0] != "a.png" || names[1] != "b.png" {
		t.Errorf("TextureNames()=%v", names)
	}
}
