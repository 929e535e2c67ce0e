package dts

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/pack/common"
	"github.com/mogaika/tribes_browser/utils"
)

// Pose picks which keyframe drives the nodes. Sequence -1 means the default
// node transforms.
type Pose struct {
	Sequence     int
	LastKeyFrame bool
}

var DefaultPose = Pose{Sequence: -1}

var posePreference = []struct {
	name string
	last bool
}{
	{"activation", true},
	{"root", false},
	{"ambient", false},
	{"idle", false},
}

// SelectPose chooses the resting pose the viewer shows.
func (s *Shape) SelectPose() Pose {
	if len(s.Sequences) == 0 {
		return DefaultPose
	}
	for _, pref := range posePreference {
		if seq := s.FindSequence(pref.name); seq != -1 {
			return Pose{Sequence: seq, LastKeyFrame: pref.last}
		}
	}
	return Pose{Sequence: 0}
}

// LOD picks a detail level. Detail -1 selects the most detailed one.
type LOD struct {
	Detail int
}

var AutoLOD = LOD{Detail: -1}

// SelectDetail returns the detail index used for lod, or -1 if there is none.
// Ties on size keep the first detail.
func (s *Shape) SelectDetail(lod LOD) int {
	if lod.Detail >= 0 && lod.Detail < len(s.Details) {
		return lod.Detail
	}
	best := -1
	for i := range s.Details {
		if best == -1 || s.Details[i].Size > s.Details[best].Size {
			best = i
		}
	}
	return best
}

// SelectLODNodes marks the nodes shown at the chosen detail level: the root
// of the detail and everything below it.
func (s *Shape) SelectLODNodes(lod LOD) []bool {
	selected := make([]bool, len(s.Nodes))
	selectAll := func() []bool {
		for i := range selected {
			selected[i] = true
		}
		return selected
	}

	detail := s.SelectDetail(lod)
	if detail == -1 {
		return selectAll()
	}
	root := int(s.Details[detail].RootNode)
	if root < 0 || root >= len(s.Nodes) {
		return selectAll()
	}

	children := make([][]int, len(s.Nodes))
	for i := range s.Nodes {
		parent := int(s.Nodes[i].ParentIndex)
		if parent >= 0 && parent < len(s.Nodes) && parent != i {
			children[parent] = append(children[parent], i)
		}
	}

	selected[root] = true
	for queue := []int{root}; len(queue) != 0; queue = queue[1:] {
		for _, child := range children[queue[0]] {
			if !selected[child] {
				selected[child] = true
				queue = append(queue, child)
			}
		}
	}
	return selected
}

// NodeTransform returns the local transform of node under pose. Nodes without
// a track in the pose sequence use their default transform.
func (s *Shape) NodeTransform(node int, pose Pose) *Transform {
	n := &s.Nodes[node]
	if pose.Sequence >= 0 && pose.Sequence < len(s.Sequences) {
		for i := int32(0); i < n.SubSequenceCount; i++ {
			ssIdx := int(n.FirstSubSequence + i)
			if ssIdx < 0 || ssIdx >= len(s.SubSequences) {
				continue
			}
			ss := &s.SubSequences[ssIdx]
			if int(ss.SequenceIndex) != pose.Sequence || ss.KeyFrameCount <= 0 {
				continue
			}
			kf := int(ss.FirstKeyFrame)
			if pose.LastKeyFrame {
				kf += int(ss.KeyFrameCount) - 1
			}
			if kf >= 0 && kf < len(s.KeyFrames) {
				if value := int(s.KeyFrames[kf].Value); value >= 0 && value < len(s.Transforms) {
					return &s.Transforms[value]
				}
			}
			break
		}
	}
	if idx := int(n.TransformIndex); idx >= 0 && idx < len(s.Transforms) {
		return &s.Transforms[idx]
	}
	return &IdentityTransform
}

const (
	worldUnvisited = iota
	worldVisiting
	worldDone
)

// resolver caches world matrices for one pose. It lives for a single call.
type resolver struct {
	s           *Shape
	pose        Pose
	world       []mgl32.Mat4
	state       []uint8
	diagnostics utils.Diagnostics
}

func newResolver(s *Shape, pose Pose) *resolver {
	return &resolver{
		s:     s,
		pose:  pose,
		world: make([]mgl32.Mat4, len(s.Nodes)),
		state: make([]uint8, len(s.Nodes)),
	}
}

func (r *resolver) World(node int) mgl32.Mat4 {
	if node < 0 || node >= len(r.s.Nodes) {
		return mgl32.Ident4()
	}
	switch r.state[node] {
	case worldDone:
		return r.world[node]
	case worldVisiting:
		r.diagnostics.Add(utils.DiagCycle, "node", node, "ancestry loops back to node %d, treated as root", node)
		return mgl32.Ident4()
	}

	r.state[node] = worldVisiting
	local := r.s.NodeTransform(node, r.pose).Matrix()
	n := &r.s.Nodes[node]
	if n.IsRoot(node) {
		r.world[node] = local
	} else {
		r.world[node] = r.World(int(n.ParentIndex)).Mul4(local)
	}
	r.state[node] = worldDone
	return r.world[node]
}

// modelSpace maps world space into the output frame: the first node is
// moved to the origin and the result is turned y-up.
func (r *resolver) modelSpace() mgl32.Mat4 {
	inverseBounds := mgl32.Ident4()
	if len(r.s.Nodes) != 0 {
		bounds := r.World(0)
		if bounds.Det() != 0 {
			inverseBounds = bounds.Inv()
		}
	}
	return utils.CorrectionMatrix.Mul4(inverseBounds)
}

// WorldMatrices returns the world matrix of every node under pose.
func (s *Shape) WorldMatrices(pose Pose) ([]mgl32.Mat4, utils.Diagnostics) {
	r := newResolver(s, pose)
	for i := range s.Nodes {
		r.World(i)
	}
	return r.world, r.diagnostics
}

// ModelMatrices returns node matrices in output space, relative to the first node.
func (s *Shape) ModelMatrices(pose Pose) ([]mgl32.Mat4, utils.Diagnostics) {
	r := newResolver(s, pose)
	model := r.modelSpace()
	result := make([]mgl32.Mat4, len(s.Nodes))
	for i := range s.Nodes {
		result[i] = model.Mul4(r.World(i))
	}
	return result, r.diagnostics
}

// MaterialTextures lists the texture name for every material slot.
func (s *Shape) MaterialTextures() []string {
	if s.Materials == nil {
		return nil
	}
	return s.Materials.TextureNames()
}

// Resolve flattens the shape at the given pose and detail level into
// per-material triangle lists. Bad faces, meshes and objects are skipped
// and reported in the result diagnostics.
func Resolve(s *Shape, pose Pose, lod LOD) *common.RenderableMesh {
	r := newResolver(s, pose)
	model := r.modelSpace()
	selected := s.SelectLODNodes(lod)
	mb := common.NewMeshBuilder()
	ds := &r.diagnostics

	for iObject := range s.Objects {
		o := &s.Objects[iObject]
		node := int(o.NodeIndex)
		if node < 0 || node >= len(selected) || !selected[node] {
			continue
		}
		if o.Invisible() {
			ds.Add(utils.DiagSkippedObject, "object", iObject, "%q is initially invisible", s.ObjectName(iObject))
			continue
		}
		if o.MeshIndex < 0 || int(o.MeshIndex) >= len(s.Meshes) {
			ds.Add(utils.DiagSkippedObject, "object", iObject, "%q has no mesh", s.ObjectName(iObject))
			continue
		}
		m := s.Meshes[o.MeshIndex]
		if m == nil || !m.Renderable() {
			ds.Add(utils.DiagSkippedMesh, "mesh", int(o.MeshIndex), "missing vertices, faces or frames")
			continue
		}

		xform := model.Mul4(r.World(node)).Mul4(mgl32.Translate3D(o.Offset[0], o.Offset[1], o.Offset[2]))
		positions := m.FramePositions(0)
		firstVert := int(m.Frames[0].FirstVert)

		for iFace := range m.Faces {
			f := &m.Faces[iFace]
			var keys [3]common.VertexKey
			var verts [3]common.Vertex
			valid := true
			for i, corner := range f.Corners() {
				vi, ti := firstVert+int(corner[0]), int(corner[1])
				if vi < 0 || vi >= len(positions) || ti < 0 || ti >= len(m.TexVerts) {
					valid = false
					ds.Add(utils.DiagSkippedFace, "mesh face", iFace,
						"mesh %d: vertex %d or uv %d out of range", o.MeshIndex, vi, ti)
					break
				}
				keys[i] = common.VertexKey{Source: iObject, Vertex: vi, UV: ti}
				verts[i] = common.Vertex{
					Position: utils.TransformPoint(xform, positions[vi]),
					UV:       m.TexVerts[ti],
				}
			}
			if valid {
				mb.AddTriangle(int(f.Material), keys, verts)
			}
		}
	}

	rm := mb.Build()
	rm.MaterialTextures = s.MaterialTextures()
	rm.Diagnostics = append(append(rm.Diagnostics, s.Diagnostics...), r.diagnostics...)
	return rm
}
