package common

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/utils"
)

type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// MaterialGroup is a run of triangles sharing one material.
// Indices in the run point into the group's own vertex range.
type MaterialGroup struct {
	MaterialIndex int
	IndexStart    int
	IndexCount    int
	VertexStart   int
	VertexCount   int
}

// RenderableMesh is the flattened output of a shape or interior.
type RenderableMesh struct {
	Vertices         []Vertex
	Indices          []uint32
	Groups           []MaterialGroup
	MaterialTextures []string
	Diagnostics      utils.Diagnostics
}

func (rm *RenderableMesh) TrianglesCount() int {
	return len(rm.Indices) / 3
}

// VertexKey identifies a source vertex for deduplication inside a material group.
type VertexKey struct {
	Source int
	Vertex int
	UV     int
}

type groupBuilder struct {
	vertices []Vertex
	indices  []uint32
	lookup   map[VertexKey]uint32
}

// MeshBuilder collects triangles per material and merges identical corners.
type MeshBuilder struct {
	groups map[int]*groupBuilder
}

func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{groups: make(map[int]*groupBuilder)}
}

func (mb *MeshBuilder) group(material int) *groupBuilder {
	g, ok := mb.groups[material]
	if !ok {
		g = &groupBuilder{lookup: make(map[VertexKey]uint32)}
		mb.groups[material] = g
	}
	return g
}

// AddTriangle appends one triangle. Corners with a key already seen in the
// same material group reuse the earlier vertex.
func (mb *MeshBuilder) AddTriangle(material int, keys [3]VertexKey, verts [3]Vertex) {
	g := mb.group(material)
	for i := range keys {
		idx, ok := g.lookup[keys[i]]
		if !ok {
			idx = uint32(len(g.vertices))
			g.vertices = append(g.vertices, verts[i])
			g.lookup[keys[i]] = idx
		}
		g.indices = append(g.indices, idx)
	}
}

// Build lays groups out in material order. Indices are rebased so they
// address the shared vertex buffer directly.
func (mb *MeshBuilder) Build() *RenderableMesh {
	materials := make([]int, 0, len(mb.groups))
	for material := range mb.groups {
		materials = append(materials, material)
	}
	sort.Ints(materials)

	rm := &RenderableMesh{}
	for _, material := range materials {
		g := mb.groups[material]
		base := uint32(len(rm.Vertices))
		rm.Groups = append(rm.Groups, MaterialGroup{
			MaterialIndex: material,
			IndexStart:    len(rm.Indices),
			IndexCount:    len(g.indices),
			VertexStart:   len(rm.Vertices),
			VertexCount:   len(g.vertices),
		})
		rm.Vertices = append(rm.Vertices, g.vertices...)
		for _, idx := range g.indices {
			rm.Indices = append(rm.Indices, base+idx)
		}
	}
	return rm
}

// ViewerMesh is the flat json layout the browser viewer consumes.
type ViewerMesh struct {
	V        []float32          `json:"v"`
	UV       []float32          `json:"uv"`
	Tri      []uint32           `json:"tri"`
	Groups   []MaterialGroup    `json:"groups"`
	Textures []string           `json:"textures"`
	Notes    []utils.Diagnostic `json:"notes,omitempty"`
}

func (rm *RenderableMesh) Viewer() *ViewerMesh {
	vm := &ViewerMesh{
		V:        make([]float32, 0, len(rm.Vertices)*3),
		UV:       make([]float32, 0, len(rm.Vertices)*2),
		Tri:      rm.Indices,
		Groups:   rm.Groups,
		Textures: rm.MaterialTextures,
		Notes:    rm.Diagnostics,
	}
	if vm.Tri == nil {
		vm.Tri = []uint32{}
	}
	for _, v := range rm.Vertices {
		vm.V = append(vm.V, v.Position[:]...)
		vm.UV = append(vm.UV, v.UV[:]...)
	}
	return vm
}
