package dts

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/pack/mesh"
	"github.com/mogaika/tribes_browser/utils"
)

func translate(x, y, z float32) Transform {
	t := IdentityTransform
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

func chainShape() *Shape {
	return &Shape{
		Nodes: []Node{
			{NameIndex: -1, ParentIndex: -1, TransformIndex: 0},
			{NameIndex: -1, ParentIndex: 0, TransformIndex: 1},
			{NameIndex: -1, ParentIndex: 1, TransformIndex: 2},
		},
		Transforms: []Transform{
			IdentityTransform,
			translate(1, 0, 0),
			translate(0, 1, 0),
		},
	}
}

func TestQuatIdentity(t *testing.T) {
	q := Quat16{X: 0, Y: 0, Z: 0, W: 32767, Max: QUAT16_MAX}
	if m := q.Quat().Mat4(); !m.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("matrix %v; expected identity", m)
	}
	zero := Quat16{Max: QUAT16_MAX}
	if m := zero.Quat().Mat4(); !m.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("zero quaternion matrix %v; expected identity", m)
	}
}

func TestWorldMatrices(t *testing.T) {
	s := chainShape()
	world, ds := s.WorldMatrices(DefaultPose)
	if len(ds) != 0 {
		t.Errorf("diagnostics %v", ds)
	}
	if !world[0].ApproxEqual(mgl32.Ident4()) {
		t.Errorf("root world %v; expected identity", world[0])
	}
	if tr := world[1].Col(3).Vec3(); !tr.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Errorf("child translation %v", tr)
	}
	if tr := world[2].Col(3).Vec3(); !tr.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Errorf("grandchild translation %v", tr)
	}

	model, _ := s.ModelMatrices(DefaultPose)
	expected := utils.CorrectionMatrix.Mul4(mgl32.Translate3D(1, 0, 0))
	if !model[1].ApproxEqual(expected) {
		t.Errorf("child model matrix %v; expected %v", model[1], expected)
	}
	// y up becomes -z after the correction
	if p := utils.TransformPoint(model[2], mgl32.Vec3{}); !p.ApproxEqualThreshold(mgl32.Vec3{1, 0, -1}, 1e-5) {
		t.Errorf("grandchild origin %v", p)
	}
}

func TestWorldMatricesBoundsNode(t *testing.T) {
	s := chainShape()
	s.Transforms[0] = translate(0, 0, 5)
	model, _ := s.ModelMatrices(DefaultPose)
	if !model[0].ApproxEqual(utils.CorrectionMatrix) {
		t.Errorf("bounds node model %v; expected correction only", model[0])
	}
}

func TestCycleGuard(t *testing.T) {
	s := chainShape()
	s.Nodes[0].ParentIndex = 2
	_, ds := s.WorldMatrices(DefaultPose)
	if ds.Count(utils.DiagCycle) == 0 {
		t.Errorf("no cycle note: %v", ds)
	}
}

var lodTests = []struct {
	details  []Detail
	lod      LOD
	selected []bool
}{
	{[]Detail{{RootNode: 0, Size: 1}}, AutoLOD, []bool{true, true, true}},
	{nil, AutoLOD, []bool{true, true, true}},
	{[]Detail{{RootNode: 2, Size: 1}, {RootNode: 1, Size: 4}}, AutoLOD, []bool{false, true, true}},
	{[]Detail{{RootNode: 2, Size: 1}, {RootNode: 1, Size: 4}}, LOD{Detail: 0}, []bool{false, false, true}},
	{[]Detail{{RootNode: 2, Size: 4}, {RootNode: 1, Size: 4}}, AutoLOD, []bool{false, false, true}},
	{[]Detail{{RootNode: -1, Size: 4}}, AutoLOD, []bool{true, true, true}},
}

func TestSelectLODNodes(t *testing.T) {
	for i, test := range lodTests {
		s := chainShape()
		s.Details = test.details
		got := s.SelectLODNodes(test.lod)
		for j := range got {
			if got[j] != test.selected[j] {
				t.Errorf("#%d: selected %v; expected %v", i, got, test.selected)
				break
			}
		}
	}
}

func namedShape(seqNames ...string) *Shape {
	s := &Shape{}
	for i, name := range seqNames {
		var n Name
		copy(n[:], name)
		s.Names = append(s.Names, n)
		s.Sequences = append(s.Sequences, Sequence{NameIndex: int32(i)})
	}
	return s
}

var poseTests = []struct {
	names []string
	pose  Pose
}{
	{nil, DefaultPose},
	{[]string{"walk", "run"}, Pose{Sequence: 0}},
	{[]string{"walk", "Idle", "root"}, Pose{Sequence: 2}},
	{[]string{"ambient", "ACTIVATION"}, Pose{Sequence: 1, LastKeyFrame: true}},
	{[]string{"walk", "idle"}, Pose{Sequence: 1}},
}

func TestSelectPose(t *testing.T) {
	for _, test := range poseTests {
		if pose := namedShape(test.names...).SelectPose(); pose != test.pose {
			t.Errorf("SelectPose(%v)=%+v; expected %+v", test.names, pose, test.pose)
		}
	}
}

func TestNodeTransformFollowsPose(t *testing.T) {
	s := chainShape()
	s.Sequences = []Sequence{{NameIndex: -1}}
	s.SubSequences = []SubSequence{{SequenceIndex: 0, KeyFrameCount: 2, FirstKeyFrame: 0}}
	s.KeyFrames = []KeyFrame{{Value: 1}, {Value: 2}}
	s.Nodes[0].SubSequenceCount = 1

	if tr := s.NodeTransform(0, DefaultPose); tr != &s.Transforms[0] {
		t.Errorf("default pose transform %+v", tr)
	}
	if tr := s.NodeTransform(0, Pose{Sequence: 0}); tr != &s.Transforms[1] {
		t.Errorf("first keyframe transform %+v", tr)
	}
	if tr := s.NodeTransform(0, Pose{Sequence: 0, LastKeyFrame: true}); tr != &s.Transforms[2] {
		t.Errorf("last keyframe transform %+v", tr)
	}
}

func triangleMesh(faces ...mesh.Face) *mesh.Mesh {
	return &mesh.Mesh{
		Verts:    []mesh.Vert{{}, {X: 1}, {Y: 1}},
		TexVerts: []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Faces:    faces,
		Frames:   []mesh.Frame{{Scale: mgl32.Vec3{1, 1, 1}}},
	}
}

func TestResolve(t *testing.T) {
	s := chainShape()
	s.Details = []Detail{{RootNode: 0, Size: 1}}
	s.Meshes = []*mesh.Mesh{
		triangleMesh(
			mesh.Face{Vert0: 0, Tex0: 0, Vert1: 1, Tex1: 1, Vert2: 2, Tex2: 2, Material: 1},
			// one past the end of the vertex array
			mesh.Face{Vert0: 0, Tex0: 0, Vert1: 3, Tex1: 1, Vert2: 2, Tex2: 2, Material: 1},
			mesh.Face{Vert0: 0, Tex0: 0, Vert1: 2, Tex1: 2, Vert2: 1, Tex2: 1, Material: 0},
		),
		{},
	}
	s.Objects = []Object{
		{NameIndex: -1, MeshIndex: 0, NodeIndex: 1, Offset: mgl32.Vec3{0, 0, 1}},
		{NameIndex: -1, MeshIndex: 0, NodeIndex: 2, Flags: OBJECT_FLAG_INVISIBLE},
		{NameIndex: -1, MeshIndex: 1, NodeIndex: 0},
	}

	rm := Resolve(s, DefaultPose, AutoLOD)
	if rm.TrianglesCount() != 2 {
		t.Fatalf("%d triangles; expected 2", rm.TrianglesCount())
	}
	if n := rm.Diagnostics.Count(utils.DiagSkippedFace); n != 1 {
		t.Errorf("%d skipped faces; expected 1", n)
	}
	if n := rm.Diagnostics.Count(utils.DiagSkippedObject); n != 1 {
		t.Errorf("%d skipped objects; expected 1", n)
	}
	if n := rm.Diagnostics.Count(utils.DiagSkippedMesh); n != 1 {
		t.Errorf("%d skipped meshes; expected 1", n)
	}
	if len(rm.Groups) != 2 || rm.Groups[0].MaterialIndex != 0 || rm.Groups[1].MaterialIndex != 1 {
		t.Errorf("groups %+v", rm.Groups)
	}

	// vertex 0 of the object: node 1 at x=1, offset z=1, then turned y up
	first := rm.Vertices[rm.Indices[rm.Groups[1].IndexStart]].Position
	if !first.ApproxEqualThreshold(mgl32.Vec3{1, 1, 0}, 1e-5) {
		t.Errorf("first vertex %v; expected (1,1,0)", first)
	}
}
