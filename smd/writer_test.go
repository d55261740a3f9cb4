package smd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/morpheme"
	"github.com/mogaika/morpheme_converter/morpheme/morphemetest"
)

var expansionTests = []struct {
	fps      float64
	noExpand bool
	out      int
}{
	{10, false, 3},
	{30, false, 1},
	{15, false, 2},
	{20, false, 1},
	{60, false, 1},
	{10, true, 1},
	{0, false, 1},
	{-5, false, 1},
}

func TestExpansionFactor(t *testing.T) {
	for _, test := range expansionTests {
		if f := ExpansionFactor(test.fps, test.noExpand); f != test.out {
			t.Errorf("ExpansionFactor(%v, %v) = %d; expected %d", test.fps, test.noExpand, f, test.out)
		}
	}
}

func writeTwoBones(t *testing.T, fps float32, opts Options) string {
	t.Helper()
	return writeSequence(t, morphemetest.TwoBoneSet(), morphemetest.TwoBoneSequence(fps, 3), opts)
}

func writeSequence(t *testing.T, set []byte, s *morphemetest.Sequence, opts Options) string {
	t.Helper()
	skel, err := morpheme.ParseSkeleton(bytes.NewReader(set), morpheme.SkeletonOptions{})
	if err != nil {
		t.Fatal(err)
	}
	d, err := morpheme.NewDecoder(bytes.NewReader(morphemetest.BuildSequence(s)), skel, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, opts)
	w.WriteNodes(skel)
	w.WriteSkeleton(skel)
	if err := d.DecodeSegments(func(_ int, h *morpheme.SegmentHeader, table *morpheme.PoseTable) error {
		return w.WriteSegment(h, table)
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

const twoBonesModern = `version 1
nodes
0 "Scene_Root" -1
1 "GenericHumanLThigh" 0
end
skeleton
time 0
0  0.000000 0.000000 0.000000  3.141593 0.000000 0.000000
1  0.500000 1.000000 1.500000  3.141593 0.000000 0.000000
time 1
0  0 0 0  0 0 0
1  -0.500000 -0.500000 -0.500000  4.712389 0.000000 1.570796
2  0.000000 0.000000 0.000000  4.712389 0.000000 1.570796
time 2
0  0 0 0  0 0 0
1  -0.500000 -0.500000 -0.500000  4.712389 0.000000 1.570796
2  0.125000 0.125000 0.125000  4.712389 0.000000 1.570796
end
`

const twoBonesLegacy = `version 1
nodes
0 "Scene_Root" -1
1 "GenericHumanLThigh" 0
end
skeleton
time 0
0  0.000000 0.000000 0.000000  0.000000 0.000000 0.000000
1  50.000000 100.000000 150.000000  0.000000 0.000000 0.000000
time 1
0  0 0 0  0 0 0
1  -50.000000 -50.000000 -50.000000  1.570796 0.000000 1.570796
2  0.000000 0.000000 0.000000  1.570796 0.000000 1.570796
time 2
0  0 0 0  0 0 0
1  -50.000000 -50.000000 -50.000000  1.570796 0.000000 1.570796
2  12.500000 12.500000 12.500000  1.570796 0.000000 1.570796
end
`

func TestWriterTwoBones(t *testing.T) {
	modern := writeTwoBones(t, 30, Options{Convention: config.ConventionModern, Expansion: ExpansionFactor(30, false)})
	if modern != twoBonesModern {
		t.Errorf("modern output:\n%s\nexpected:\n%s", modern, twoBonesModern)
	}

	legacy := writeTwoBones(t, 30, Options{Convention: config.ConventionLegacy, Expansion: 1})
	if legacy != twoBonesLegacy {
		t.Errorf("legacy output:\n%s\nexpected:\n%s", legacy, twoBonesLegacy)
	}
}

// bone 1 is written relative to its sampled parent bone 0
const chainLegacy = `version 1
nodes
0 "Scene_Root" -1
1 "GenericHumanPelvis" 0
2 "GenericHumanLThigh" 1
end
skeleton
time 0
0  0.000000 0.000000 0.000000  0.000000 0.000000 0.000000
1  0.000000 0.000000 0.000000  0.000000 0.000000 0.000000
2  50.000000 100.000000 150.000000  0.000000 0.000000 0.000000
time 1
0  0 0 0  0 0 0
1  -50.000000 -50.000000 -50.000000  2.068134 -0.004126 0.016248
2  0.000000 0.000000 0.000000  -1.373471 0.463114 1.989955
time 2
0  0 0 0  0 0 0
1  -50.000000 -50.000000 -50.000000  2.068134 -0.004126 0.016248
2  12.500000 12.500000 12.500000  -1.373471 0.463114 1.989955
end
`

func TestWriterChainHierarchy(t *testing.T) {
	s := morphemetest.TwoBoneSequence(30, 3)
	s.Segments[0].RotationFull.Channels[0].Coarse = [3]uint8{200, 128, 128}
	s.Segments[0].RotationFull.Channels[1].Coarse = [3]uint8{128, 60, 128}

	out := writeSequence(t, morphemetest.ChainSet(), s, Options{Convention: config.ConventionLegacy, Expansion: 1})
	if out != chainLegacy {
		t.Errorf("output:\n%s\nexpected:\n%s", out, chainLegacy)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriterCloseReportsWriteError(t *testing.T) {
	skel, err := morpheme.ParseSkeleton(bytes.NewReader(morphemetest.TwoBoneSet()), morpheme.SkeletonOptions{})
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(failWriter{}, Options{Convention: config.ConventionLegacy, Expansion: 1})
	w.WriteNodes(skel)
	w.WriteSkeleton(skel)
	if err := w.Close(); err == nil {
		t.Errorf("Close succeeded on a failing writer")
	}
}

func TestWriterExpansion(t *testing.T) {
	out := writeTwoBones(t, 10, Options{Convention: config.ConventionModern, Expansion: ExpansionFactor(10, false)})

	var times []string
	roots := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "time ") {
			times = append(times, line)
		}
		if line == "0  0 0 0  0 0 0" {
			roots++
		}
	}
	// two emitted frames, each repeated three times, after the bind pose
	if len(times) != 7 || times[6] != "time 6" {
		t.Errorf("time lines %v", times)
	}
	if roots != 6 {
		t.Errorf("%d root lines; expected 6", roots)
	}
}

func TestOptionsFrom(t *testing.T) {
	o := config.Default()
	if opts := OptionsFrom(o, 10); opts.Expansion != 3 || opts.Convention != config.ConventionModern {
		t.Errorf("modern options %+v", opts)
	}
	o.Legacy = true
	if opts := OptionsFrom(o, 10); opts.Expansion != 1 || opts.Convention != config.ConventionLegacy {
		t.Errorf("legacy options %+v", opts)
	}
}
