package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

// ExportBinary writes doc as a single .glb stream.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	if len(doc.Scenes) != 0 && len(doc.Scenes[0].Nodes) == 0 {
		for iNode := range doc.Nodes {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
