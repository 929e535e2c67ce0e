package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/pack/dts"
)

func name(s string) (n dts.Name) {
	copy(n[:], s)
	return n
}

func TestPrintTree(t *testing.T) {
	s := &dts.Shape{
		Names: []dts.Name{name("bounds"), name("gun"), name("barrel")},
		Nodes: []dts.Node{
			{NameIndex: 0, ParentIndex: -1, TransformIndex: 0},
			{NameIndex: 2, ParentIndex: 2, TransformIndex: 1},
			{NameIndex: 1, ParentIndex: 0, TransformIndex: 1},
		},
		Transforms: []dts.Transform{
			dts.IdentityTransform,
			{Rotation: dts.IdentityTransform.Rotation, Translation: mgl32.Vec3{0, 0, 1}, Scale: mgl32.Vec3{1, 1, 1}},
		},
	}

	var buf bytes.Buffer
	printTree(&buf, s, dts.DefaultPose)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	for i, prefix := range []string{"0 bounds", "  2 gun", "    1 barrel"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d %q; expected prefix %q", i, lines[i], prefix)
		}
	}
	if !strings.Contains(lines[2], "world [0 0 2]") {
		t.Errorf("barrel world position: %q", lines[2])
	}
}
