package dis

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/pack/common"
	"github.com/mogaika/tribes_browser/pack/dig"
	"github.com/mogaika/tribes_browser/pack/dml"
	"github.com/mogaika/tribes_browser/utils"
)

// TextureSizer reports texture dimensions in texels; ok is false when unknown.
type TextureSizer func(texture string) (width, height int, ok bool)

// Render flattens the selected detail level into triangle fans grouped by
// material. materials may be nil.
func (it *Interior) Render(materials *dml.MaterialList, sizer TextureSizer) *common.RenderableMesh {
	g, name := it.Geometry()
	var textures []string
	if materials != nil {
		textures = materials.TextureNames()
	}
	if g == nil {
		rm := common.NewMeshBuilder().Build()
		rm.MaterialTextures = textures
		rm.Diagnostics = append(rm.Diagnostics, it.Diagnostics...)
		rm.Diagnostics.Add(utils.DiagSkippedMesh, "geometry", 0, "geometry %q not loaded", name)
		return rm
	}
	rm, ds := RenderGeometry(g, textures, sizer)
	rm.Diagnostics = append(append(rm.Diagnostics, it.Diagnostics...), ds...)
	return rm
}

func textureSize(textures []string, material int, sizer TextureSizer) (float32, float32) {
	if material < len(textures) && sizer != nil && !dml.IsPlaceholder(textures[material]) {
		if w, h, ok := sizer(textures[material]); ok && w > 0 && h > 0 {
			return float32(w), float32(h)
		}
	}
	return dig.DEFAULT_TEX_SIZE, dig.DEFAULT_TEX_SIZE
}

// RenderGeometry turns every surface of g into a triangle fan.
func RenderGeometry(g *dig.Geometry, textures []string, sizer TextureSizer) (*common.RenderableMesh, utils.Diagnostics) {
	var ds utils.Diagnostics
	mb := common.NewMeshBuilder()

	for iSurface := range g.Surfaces {
		s := &g.Surfaces[iSurface]
		material := int(s.MaterialIndex)
		if material == dig.MATERIAL_NONE {
			material = 0
		} else if material >= len(textures) {
			material = ds.OutOfRange("surface", iSurface, "material", material, len(textures), 0)
		}

		verts, ok := g.SurfaceVertices(iSurface)
		if !ok {
			ds.Add(utils.DiagSkippedFace, "surface", iSurface, "vertex run %d+%d out of %d",
				s.VertexStart, s.VertexCount, len(g.Vertices))
			continue
		}
		if len(verts) < 3 {
			continue
		}

		w, h := textureSize(textures, material, sizer)
		scale := mgl32.Vec2{-(float32(s.TexScaleX) + 1) / w, -(float32(s.TexScaleY) + 1) / h}
		offset := mgl32.Vec2{-(float32(s.TexOffsetX) + 1) / w, -(float32(s.TexOffsetY) + 1) / h}

		corners := make([]common.Vertex, len(verts))
		valid := true
		for i, v := range verts {
			if int(v.PointIndex) >= len(g.Points3) || int(v.UVIndex) >= len(g.Points2) {
				valid = false
				ds.Add(utils.DiagSkippedFace, "surface", iSurface, "point %d or uv %d out of range",
					v.PointIndex, v.UVIndex)
				break
			}
			uv := g.Points2[v.UVIndex]
			corners[i] = common.Vertex{
				Position: utils.TransformPoint(utils.CorrectionMatrix, g.Points3[v.PointIndex]),
				UV:       mgl32.Vec2{offset[0] + uv[0]*scale[0], offset[1] + uv[1]*scale[1]},
			}
		}
		if !valid {
			continue
		}

		key := func(i int) common.VertexKey {
			return common.VertexKey{Source: iSurface, Vertex: int(s.VertexStart) + i}
		}
		for i := 1; i < len(corners)-1; i++ {
			mb.AddTriangle(material,
				[3]common.VertexKey{key(0), key(i), key(i + 1)},
				[3]common.Vertex{corners[0], corners[i], corners[i+1]})
		}
	}

	rm := mb.Build()
	rm.MaterialTextures = textures
	return rm, ds
}
