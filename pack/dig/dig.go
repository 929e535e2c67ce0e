package dig

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack"
	"github.com/mogaika/tribes_browser/pack/pers"
	"github.com/mogaika/tribes_browser/utils"
)

func init() {
	pack.SetHandler(".DIG", func(src utils.ResourceSource, data []byte) (interface{}, error) {
		return NewFromData(data)
	})
}

const GEOMETRY_CLASS = "ITRGeometry"

// record sizes in bits
const (
	SURFACE_SIZE     = 16 * 8
	BSP_NODE_SIZE    = 4 * 16
	SOLID_LEAF_SIZE  = 12 * 8
	EMPTY_LEAF_SIZE  = 44 * 8
	VERTEX_SIZE      = 2 * 16
	POINT3_SIZE      = 3 * 32
	POINT2_SIZE      = 2 * 32
	PLANE_SIZE       = 4 * 32
	MATERIAL_NONE    = 0xff
	DEFAULT_TEX_SIZE = 256
)

type Surface struct {
	Flags         uint8
	MaterialIndex uint8
	// texture scale and offset in texel units minus one
	TexScaleX, TexScaleY   uint8
	TexOffsetX, TexOffsetY uint8
	PlaneIndex             uint16
	VertexStart            uint32
	PointStart             uint32
	VertexCount            uint8
	PointCount             uint8
	// trailing 16 bits, meaning unknown
	Pad uint16
}

type BSPNode struct {
	PlaneIndex int16
	Front      int16
	Back       int16
	Fill       int16
}

type SolidLeaf struct {
	SurfaceStart uint32
	PlaneStart   uint32
	SurfaceCount int16
	PlaneCount   int16
}

type EmptyLeaf struct {
	Flags        uint16
	SurfaceCount int16
	PVSIndex     uint32
	SurfaceStart uint32
	PlaneStart   uint32
	Min, Max     mgl32.Vec3
	PlaneCount   int16
	Pad          uint16
}

type Vertex struct {
	PointIndex uint16
	UVIndex    uint16
}

type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Geometry is one decoded interior geometry (.dig) file.
type Geometry struct {
	Version      uint32
	BuildID      uint32
	TextureScale float32
	Min, Max     mgl32.Vec3

	Surfaces    []Surface
	BSPNodes    []BSPNode
	SolidLeaves []SolidLeaf
	EmptyLeaves []EmptyLeaf
	PVSBits     []byte
	Vertices    []Vertex
	Points3     []mgl32.Vec3
	Points2     []mgl32.Vec2
	Planes      []Plane

	HighestMip uint32
	Flags      uint32
}

type counts struct {
	surfaces, nodes, solidLeaves, emptyLeaves, pvsBytes, vertices, points3, points2, planes int
}

func NewFromBitCursor(bc *utils.BitCursor) (*Geometry, error) {
	h, err := pers.ReadBitHeader(bc.SetKind("geometry header"), GEOMETRY_CLASS)
	if err != nil {
		return nil, err
	}

	g := &Geometry{
		Version:      h.Version,
		BuildID:      bc.ReadUint(32),
		TextureScale: bc.ReadF32(),
		Min:          bc.ReadPoint3F(),
		Max:          bc.ReadPoint3F(),
	}
	n := counts{
		surfaces:    int(bc.ReadUint(32)),
		nodes:       int(bc.ReadUint(32)),
		solidLeaves: int(bc.ReadUint(32)),
		emptyLeaves: int(bc.ReadUint(32)),
		pvsBytes:    int(bc.ReadUint(32)),
		vertices:    int(bc.ReadUint(32)),
		points3:     int(bc.ReadUint(32)),
		points2:     int(bc.ReadUint(32)),
		planes:      int(bc.ReadUint(32)),
	}

	if bc.SetKind("surface").Require(n.surfaces, SURFACE_SIZE) {
		g.Surfaces = make([]Surface, n.surfaces)
		for i := range g.Surfaces {
			s := &g.Surfaces[i]
			s.Flags = bc.ReadU8()
			s.MaterialIndex = bc.ReadU8()
			s.TexScaleX = bc.ReadU8()
			s.TexScaleY = bc.ReadU8()
			s.TexOffsetX = bc.ReadU8()
			s.TexOffsetY = bc.ReadU8()
			s.PlaneIndex = bc.ReadU16()
			s.VertexStart = bc.ReadUint(32)
			s.PointStart = bc.ReadUint(32)
			s.VertexCount = bc.ReadU8()
			s.PointCount = bc.ReadU8()
			s.Pad = bc.ReadU16()
		}
	}

	if bc.SetKind("bsp node").Require(n.nodes, BSP_NODE_SIZE) {
		g.BSPNodes = make([]BSPNode, n.nodes)
		for i := range g.BSPNodes {
			g.BSPNodes[i] = BSPNode{
				PlaneIndex: bc.ReadInt16(),
				Front:      bc.ReadInt16(),
				Back:       bc.ReadInt16(),
				Fill:       bc.ReadInt16(),
			}
		}
	}

	if bc.SetKind("solid leaf").Require(n.solidLeaves, SOLID_LEAF_SIZE) {
		g.SolidLeaves = make([]SolidLeaf, n.solidLeaves)
		for i := range g.SolidLeaves {
			g.SolidLeaves[i] = SolidLeaf{
				SurfaceStart: bc.ReadUint(32),
				PlaneStart:   bc.ReadUint(32),
				SurfaceCount: bc.ReadInt16(),
				PlaneCount:   bc.ReadInt16(),
			}
		}
	}

	if bc.SetKind("empty leaf").Require(n.emptyLeaves, EMPTY_LEAF_SIZE) {
		g.EmptyLeaves = make([]EmptyLeaf, n.emptyLeaves)
		for i := range g.EmptyLeaves {
			l := &g.EmptyLeaves[i]
			l.Flags = bc.ReadU16()
			l.SurfaceCount = bc.ReadInt16()
			l.PVSIndex = bc.ReadUint(32)
			l.SurfaceStart = bc.ReadUint(32)
			l.PlaneStart = bc.ReadUint(32)
			l.Min = bc.ReadPoint3F()
			l.Max = bc.ReadPoint3F()
			l.PlaneCount = bc.ReadInt16()
			l.Pad = bc.ReadU16()
		}
	}

	if bc.SetKind("pvs").Require(n.pvsBytes, 8) {
		g.PVSBits = bc.ReadBytes(n.pvsBytes)
	}

	if bc.SetKind("vertex").Require(n.vertices, VERTEX_SIZE) {
		g.Vertices = make([]Vertex, n.vertices)
		for i := range g.Vertices {
			g.Vertices[i] = Vertex{PointIndex: bc.ReadU16(), UVIndex: bc.ReadU16()}
		}
	}

	if bc.SetKind("point3").Require(n.points3, POINT3_SIZE) {
		g.Points3 = make([]mgl32.Vec3, n.points3)
		for i := range g.Points3 {
			g.Points3[i] = bc.ReadPoint3F()
		}
	}

	if bc.SetKind("point2").Require(n.points2, POINT2_SIZE) {
		g.Points2 = make([]mgl32.Vec2, n.points2)
		for i := range g.Points2 {
			g.Points2[i] = bc.ReadPoint2F()
		}
	}

	if bc.SetKind("plane").Require(n.planes, PLANE_SIZE) {
		g.Planes = make([]Plane, n.planes)
		for i := range g.Planes {
			g.Planes[i] = Plane{Normal: bc.ReadPoint3F(), D: bc.ReadF32()}
		}
	}

	bc.SetKind("geometry trailer")
	g.HighestMip = bc.ReadUint(32)
	g.Flags = bc.ReadUint(32)

	if bc.Err() != nil {
		return nil, bc.Err()
	}
	return g, nil
}

func NewFromData(b []byte) (*Geometry, error) {
	g, err := NewFromBitCursor(utils.NewBitCursor("geometry", b))
	return g, errors.Wrapf(err, "Error decoding %s", GEOMETRY_CLASS)
}

// SurfaceVertices returns the vertex run of surface i, or false when the run
// points outside the vertex array.
func (g *Geometry) SurfaceVertices(i int) ([]Vertex, bool) {
	s := &g.Surfaces[i]
	start := int(s.VertexStart)
	end := start + int(s.VertexCount)
	if start < 0 || end > len(g.Vertices) {
		return nil, false
	}
	return g.Vertices[start:end], true
}
