package convert

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/morpheme"
	"github.com/mogaika/morpheme_converter/morpheme/morphemetest"
)

func TestAnimSetPath(t *testing.T) {
	seq := filepath.Join("data", "Liz", "anims", "walk.MorphemeAnimSequence")
	if p := AnimSetPath(seq); p != filepath.Join("data", "Liz", "anims.MorphemeAnimSet") {
		t.Errorf("AnimSetPath(%q) = %q", seq, p)
	}
	if p := OutputPath(seq); p != filepath.Join("data", "Liz", "anims", "walk.smd") {
		t.Errorf("OutputPath(%q) = %q", seq, p)
	}
}

func writeFixture(t *testing.T, s *morphemetest.Sequence) string {
	t.Helper()
	path, err := morphemetest.WriteFixture(t.TempDir(), "Liz", "idle",
		morphemetest.TwoBoneSet(), morphemetest.BuildSequence(s))
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFileTwoBones(t *testing.T) {
	seqPath := writeFixture(t, morphemetest.TwoBoneSequence(30, 3))

	o := config.Default()
	o.GLTF = true
	out, err := ConvertFile(seqPath, o, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != OutputPath(seqPath) {
		t.Errorf("output %q", out)
	}

	data, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "version 1\nnodes\n0 \"Scene_Root\" -1\n1 \"GenericHumanRThigh\" 0\nend\nskeleton\ntime 0\n") {
		t.Errorf("unexpected header:\n%s", text)
	}
	if !strings.HasSuffix(text, "2  0.125000 0.125000 0.125000  4.712389 0.000000 1.570796\nend\n") {
		t.Errorf("unexpected tail:\n%s", text)
	}
	if n := strings.Count(text, "\ntime "); n != 3 {
		t.Errorf("%d time lines; expected 3", n)
	}

	glb, err := ioutil.ReadFile(GLTFPath(seqPath))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(glb, []byte("glTF")) {
		t.Errorf("glb without magic")
	}
}

func TestConvertLegacyKeepsNames(t *testing.T) {
	seq := morphemetest.BuildSequence(morphemetest.TwoBoneSequence(10, 3))
	o := config.Default()
	o.Legacy = true
	res, err := Convert(bytes.NewReader(seq), bytes.NewReader(morphemetest.TwoBoneSet()), o, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skeleton.Bones[1].Name != "GenericHumanLThigh" {
		t.Errorf("legacy output mirrored %q", res.Skeleton.Bones[1].Name)
	}
	// legacy never expands, even at 10 fps
	if res.Frames != 2 || res.Segments != 1 {
		t.Errorf("frames %d segments %d", res.Frames, res.Segments)
	}
}

func TestConvertFileHeaderMismatchWritesNothing(t *testing.T) {
	s := morphemetest.TwoBoneSequence(30, 3)
	s.RegionMismatch = true
	seqPath := writeFixture(t, s)

	_, err := ConvertFile(seqPath, config.Default(), nil)
	if !errors.Is(err, morpheme.ErrHeaderMismatch) {
		t.Errorf("err = %v; expected header mismatch", err)
	}
	if _, err := os.Stat(OutputPath(seqPath)); !os.IsNotExist(err) {
		t.Errorf("output file exists after failed conversion")
	}
}

func TestConvertFileTruncatedWritesNothing(t *testing.T) {
	s := morphemetest.TwoBoneSequence(30, 3)
	s.Segments[0].PositionFull.FrameBytes = 1
	seqPath := writeFixture(t, s)

	if _, err := ConvertFile(seqPath, config.Default(), nil); !errors.Is(err, morpheme.ErrTruncatedChannelData) {
		t.Errorf("err = %v; expected truncated channel data", err)
	}
	if _, err := os.Stat(OutputPath(seqPath)); !os.IsNotExist(err) {
		t.Errorf("output file exists after failed conversion")
	}
}

func TestConvertFileMissingAnimSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Liz")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	seqPath := filepath.Join(dir, "idle.MorphemeAnimSequence")
	if err := ioutil.WriteFile(seqPath, morphemetest.BuildSequence(morphemetest.TwoBoneSequence(30, 3)), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ConvertFile(seqPath, config.Default(), nil); !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("err = %v; expected missing animset", err)
	}
}
