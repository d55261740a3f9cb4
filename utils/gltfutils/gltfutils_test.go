package gltfutils

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSkeletonDocument(t *testing.T) {
	doc := SkeletonDocument([]Joint{
		{Name: "Root", Parent: -1, Rotation: mgl64.QuatIdent()},
		{Name: "Hips", Parent: 0, Translation: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()},
		{Name: "Spine", Parent: 1, Rotation: mgl64.Quat{}},
		{Name: "Loose", Parent: 9, Rotation: mgl64.QuatIdent()},
	})

	if len(doc.Nodes) != 4 {
		t.Fatalf("%d nodes; expected 4", len(doc.Nodes))
	}
	roots := doc.Scenes[0].Nodes
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 3 {
		t.Errorf("scene roots %v; expected [0 3]", roots)
	}
	if c := doc.Nodes[0].Children; len(c) != 1 || c[0] != 1 {
		t.Errorf("root children %v", c)
	}
	if r := doc.Nodes[2].Rotation; r != [4]float32{0, 0, 0, 1} {
		t.Errorf("zero rotation exported as %v; expected identity", r)
	}
	if tr := doc.Nodes[1].Translation; tr != [3]float32{0, 1, 0} {
		t.Errorf("translation %v", tr)
	}

	var buf bytes.Buffer
	if err := ExportBinary(&buf, doc); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Errorf("binary export does not start with glTF magic")
	}
}
