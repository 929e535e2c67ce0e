package common

import (
	"fmt"
	"path"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportGLTF writes the mesh as a single gltf mesh with one primitive per
// material group. Textures are referenced by uri relative to texturesPrefix.
func (rm *RenderableMesh) ExportGLTF(name string, texturesPrefix string) *gltf.Document {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(rm.Vertices))
	uvs := make([][2]float32, len(rm.Vertices))
	for i, v := range rm.Vertices {
		positions[i] = v.Position
		uvs[i] = v.UV
	}

	gltfMesh := &gltf.Mesh{Name: name}
	if len(rm.Vertices) != 0 {
		positionAccessor := modeler.WritePosition(doc, positions)
		uvAccessor := modeler.WriteTextureCoord(doc, uvs)

		materials := make(map[int]uint32)
		for _, group := range rm.Groups {
			materialIndex, ok := materials[group.MaterialIndex]
			if !ok {
				materialIndex = rm.exportMaterial(doc, group.MaterialIndex, texturesPrefix)
				materials[group.MaterialIndex] = materialIndex
			}

			indicesAccessor := modeler.WriteIndices(doc, rm.Indices[group.IndexStart:group.IndexStart+group.IndexCount])
			gltfMesh.Primitives = append(gltfMesh.Primitives, &gltf.Primitive{
				Indices: gltf.Index(indicesAccessor),
				Attributes: map[string]uint32{
					"POSITION":   positionAccessor,
					"TEXCOORD_0": uvAccessor,
				},
				Material: gltf.Index(materialIndex),
			})
		}
	}

	doc.Meshes = append(doc.Meshes, gltfMesh)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	return doc
}

func (rm *RenderableMesh) exportMaterial(doc *gltf.Document, materialIndex int, texturesPrefix string) uint32 {
	mat := &gltf.Material{
		Name:        fmt.Sprintf("material_%d", materialIndex),
		DoubleSided: true,
	}
	if materialIndex >= 0 && materialIndex < len(rm.MaterialTextures) {
		texture := rm.MaterialTextures[materialIndex]
		mat.Name = texture
		if !isPlaceholder(texture) {
			doc.Images = append(doc.Images, &gltf.Image{
				Name: texture,
				URI:  path.Join(texturesPrefix, texture),
			})
			doc.Textures = append(doc.Textures, &gltf.Texture{
				Source: gltf.Index(uint32(len(doc.Images) - 1)),
			})
			mat.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: uint32(len(doc.Textures) - 1)},
				MetallicFactor:   gltf.Float(0),
			}
		}
	}
	doc.Materials = append(doc.Materials, mat)
	return uint32(len(doc.Materials) - 1)
}

func isPlaceholder(texture string) bool {
	return len(texture) == 0 || texture[0] == '['
}
