package gltfutils

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/morpheme_converter/utils"
)

// Joint is a skeleton node in its parent space. Parent < 0 marks a root.
type Joint struct {
	Name        string
	Parent      int
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// SkeletonDocument builds a node hierarchy for joints. Joints whose parent
// index is out of range become scene roots.
func SkeletonDocument(joints []Joint) *gltf.Document {
	doc := gltf.NewDocument()
	base := uint32(len(doc.Nodes))

	for _, j := range joints {
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        j.Name,
			Translation: utils.Vec3ToFloat32(j.Translation),
			Rotation:    utils.QuatToFloat32(j.Rotation.Normalize()),
			Scale:       mgl32.Vec3{1, 1, 1},
		})
	}
	for i, j := range joints {
		node := base + uint32(i)
		if j.Parent >= 0 && j.Parent < len(joints) && j.Parent != i {
			parent := doc.Nodes[base+uint32(j.Parent)]
			parent.Children = append(parent.Children, node)
		} else {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, node)
		}
	}
	return doc
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
