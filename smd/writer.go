// Package smd writes Valve studiomdl data (SMD) skeletal animation text.
package smd

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/morpheme"
	"github.com/mogaika/morpheme_converter/utils"
)

// TargetFPS is the rate sequences are expanded to by frame duplication.
const TargetFPS = 30

// ExpansionFactor is how many times every decoded frame is repeated.
func ExpansionFactor(fps float64, noExpand bool) int {
	if noExpand || fps <= 0 || math.IsNaN(fps) {
		return 1
	}
	f := math.Floor(TargetFPS / fps)
	if f < 1 {
		return 1
	}
	return int(f)
}

type Options struct {
	Convention config.Convention
	// UnitScale is applied on top of morpheme.PositionScale in the modern
	// convention.
	UnitScale float64
	Expansion int
}

func OptionsFrom(o *config.Options, fps float64) Options {
	return Options{
		Convention: o.Convention(),
		UnitScale:  o.UnitScale,
		Expansion:  ExpansionFactor(fps, o.NoExpand || o.Legacy),
	}
}

type Writer struct {
	w     *bufio.Writer
	opts  Options
	frame int
}

func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Expansion < 1 {
		opts.Expansion = 1
	}
	if opts.UnitScale == 0 {
		opts.UnitScale = config.DefaultUnitScale
	}
	sw := &Writer{
		w:     bufio.NewWriter(w),
		opts:  opts,
		frame: 1,
	}
	sw.print("version 1\n")
	return sw
}

func (w *Writer) printf(format string, args ...interface{}) {
	fmt.Fprintf(w.w, format, args...)
}

func (w *Writer) print(s string) {
	w.w.WriteString(s)
}

// Frames is the number of animation frames written so far.
func (w *Writer) Frames() int {
	return w.frame - 1
}

func (w *Writer) position(v mgl64.Vec3) mgl64.Vec3 {
	v = v.Mul(morpheme.PositionScale)
	if w.opts.Convention == config.ConventionModern {
		v = v.Mul(w.opts.UnitScale)
	}
	return v
}

func (w *Writer) rotation(q mgl64.Quat) mgl64.Vec3 {
	e := utils.QuatToEuler(q)
	if w.opts.Convention == config.ConventionModern {
		e[0] += math.Pi
	}
	return e
}

func (w *Writer) bone(index int, pos, rot mgl64.Vec3) {
	w.printf("%d  %.6f %.6f %.6f  %.6f %.6f %.6f\n", index, pos[0], pos[1], pos[2], rot[0], rot[1], rot[2])
}

func (w *Writer) WriteNodes(skel *morpheme.Skeleton) {
	w.print("nodes\n")
	for _, b := range skel.Bones {
		w.printf("%d \"%s\" %d\n", b.Index, b.Name, b.ParentCode)
	}
	w.print("end\n")
}

// WriteSkeleton writes the bind pose as frame 0 and opens the animation
// frames that follow.
func (w *Writer) WriteSkeleton(skel *morpheme.Skeleton) {
	w.print("skeleton\ntime 0\n")
	for i := range skel.Bones {
		w.bone(i, w.position(skel.BindTranslations[i]), w.rotation(skel.BindRotations[i]))
	}
}

// WriteSegment writes frames 0..FrameCount-2 of the segment. Animation
// bones are shifted by one node, node 0 is written as an identity root.
func (w *Writer) WriteSegment(h *morpheme.SegmentHeader, t *morpheme.PoseTable) error {
	for frame := 0; frame < h.FrameCount-1; frame++ {
		for dup := 0; dup < w.opts.Expansion; dup++ {
			w.printf("time %d\n", w.frame)
			w.frame++
			w.print("0  0 0 0  0 0 0\n")
			for bone := 0; bone < t.BoneCount(); bone++ {
				pos, rot, ok := t.GetOrBindPose(frame, bone)
				if !ok {
					continue
				}
				w.bone(bone+1, w.position(pos), w.rotation(rot))
			}
		}
	}
	return nil
}

// Close terminates the skeleton block and flushes. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	w.print("end\n")
	return w.w.Flush()
}
