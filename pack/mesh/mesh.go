package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack/pers"
	"github.com/mogaika/tribes_browser/utils"
)

const CEL_ANIM_MESH_CLASS = "TS::CelAnimMesh"

const MAX_VERSION = 3

const (
	VERT_SIZE     = 4
	TEX_VERT_SIZE = 8
	FACE_SIZE     = 7 * 4
)

type Vert struct {
	X, Y, Z     int8
	NormalIndex uint8
}

// Unpack returns the position of the vertex in a frame with the given quantization.
func (v Vert) Unpack(scale, origin mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(v.X)*scale[0] + origin[0],
		float32(v.Y)*scale[1] + origin[1],
		float32(v.Z)*scale[2] + origin[2],
	}
}

func (v Vert) Normal() mgl32.Vec3 {
	return NormalTable[v.NormalIndex]
}

type Face struct {
	Vert0, Tex0 int32
	Vert1, Tex1 int32
	Vert2, Tex2 int32
	Material    int32
}

// Corners returns the three (vertex, texture vertex) index pairs in winding order.
func (f *Face) Corners() [3][2]int32 {
	return [3][2]int32{
		{f.Vert0, f.Tex0},
		{f.Vert1, f.Tex1},
		{f.Vert2, f.Tex2},
	}
}

type Frame struct {
	FirstVert int32
	Scale     mgl32.Vec3
	Origin    mgl32.Vec3
}

type Mesh struct {
	Version          uint32
	VertsPerFrame    int32
	TexVertsPerFrame int32
	Radius           float32

	Verts    []Vert
	TexVerts []mgl32.Vec2
	Faces    []Face
	Frames   []Frame
}

func frameSize(version uint32) int {
	if version >= 3 {
		return 4 + 12 + 12
	}
	return 4
}

// NewFromCursor decodes one mesh block starting at the cursor position,
// leaving the cursor right after it.
func NewFromCursor(c *utils.Cursor) (*Mesh, error) {
	h, err := pers.ReadHeader(c.SetKind("mesh header"), CEL_ANIM_MESH_CLASS)
	if err != nil {
		return nil, err
	}
	if h.Version > MAX_VERSION {
		return nil, utils.NewFormatError(utils.ErrUnsupportedVersion, CEL_ANIM_MESH_CLASS, c.Pos(),
			"version %d", h.Version)
	}

	m := &Mesh{Version: h.Version}
	numVerts := int(c.ReadLI32())
	m.VertsPerFrame = c.ReadLI32()
	numTexVerts := int(c.ReadLI32())
	numFaces := int(c.ReadLI32())
	numFrames := int(c.ReadLI32())

	if m.Version >= 2 {
		m.TexVertsPerFrame = c.ReadLI32()
	} else {
		m.TexVertsPerFrame = int32(numTexVerts)
	}

	var legacyScale, legacyOrigin mgl32.Vec3
	if m.Version < 3 {
		legacyScale = c.ReadVec3()
		legacyOrigin = c.ReadVec3()
	}
	m.Radius = c.ReadLF()

	if c.SetKind("vert").Require(numVerts, VERT_SIZE) {
		m.Verts = make([]Vert, numVerts)
		for i := range m.Verts {
			m.Verts[i] = Vert{
				X:           c.ReadI8(),
				Y:           c.ReadI8(),
				Z:           c.ReadI8(),
				NormalIndex: c.ReadU8(),
			}
		}
	}

	if c.SetKind("texture vert").Require(numTexVerts, TEX_VERT_SIZE) {
		m.TexVerts = make([]mgl32.Vec2, numTexVerts)
		for i := range m.TexVerts {
			m.TexVerts[i] = c.ReadVec2()
		}
	}

	if c.SetKind("face").Require(numFaces, FACE_SIZE) {
		m.Faces = make([]Face, numFaces)
		for i := range m.Faces {
			f := &m.Faces[i]
			f.Vert0, f.Tex0 = c.ReadLI32(), c.ReadLI32()
			f.Vert1, f.Tex1 = c.ReadLI32(), c.ReadLI32()
			f.Vert2, f.Tex2 = c.ReadLI32(), c.ReadLI32()
			f.Material = c.ReadLI32()
		}
	}

	if c.SetKind("frame").Require(numFrames, frameSize(m.Version)) {
		m.Frames = make([]Frame, numFrames)
		for i := range m.Frames {
			f := &m.Frames[i]
			f.FirstVert = c.ReadLI32()
			if m.Version >= 3 {
				f.Scale = c.ReadVec3()
				f.Origin = c.ReadVec3()
			} else {
				f.Scale = legacyScale
				f.Origin = legacyOrigin
			}
		}
	}

	if c.Err() != nil {
		return nil, c.Err()
	}
	return m, nil
}

func NewFromData(b []byte) (*Mesh, error) {
	m, err := NewFromCursor(utils.NewCursor("mesh", b))
	return m, errors.Wrapf(err, "Error decoding %s", CEL_ANIM_MESH_CLASS)
}

// Renderable reports whether the mesh carries everything needed to emit triangles.
func (m *Mesh) Renderable() bool {
	return len(m.Faces) != 0 && len(m.Verts) != 0 && len(m.TexVerts) != 0 && len(m.Frames) != 0
}

// FramePositions unpacks every vertex with the quantization of the given frame.
// Face vertex indices are relative to the frame's FirstVert.
func (m *Mesh) FramePositions(frame int) []mgl32.Vec3 {
	if frame < 0 || frame >= len(m.Frames) {
		return nil
	}
	f := &m.Frames[frame]
	positions := make([]mgl32.Vec3, len(m.Verts))
	for i, v := range m.Verts {
		positions[i] = v.Unpack(f.Scale, f.Origin)
	}
	return positions
}
