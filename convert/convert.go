// Package convert runs the sequence to SMD pipeline for files on disk.
package convert

import (
	"bytes"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/morpheme"
	"github.com/mogaika/morpheme_converter/smd"
	"github.com/mogaika/morpheme_converter/utils"
	"github.com/mogaika/morpheme_converter/utils/gltfutils"
)

const (
	SequenceExt = ".MorphemeAnimSequence"
	AnimSetExt  = ".MorphemeAnimSet"
)

// AnimSetPath returns the skeleton file of a sequence: a directory
// <root>/<name>/ of sequences is described by <root>/<name>.MorphemeAnimSet.
func AnimSetPath(seqPath string) string {
	dir := filepath.Dir(seqPath)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+AnimSetExt)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func OutputPath(seqPath string) string {
	return replaceExt(seqPath, ".smd")
}

func GLTFPath(seqPath string) string {
	return replaceExt(seqPath, ".glb")
}

type Result struct {
	SMD      []byte
	Skeleton *morpheme.Skeleton
	Header   morpheme.SequenceHeader
	Segments int
	Frames   int
}

func skeletonOptions(o *config.Options) (morpheme.SkeletonOptions, error) {
	if !o.Mirrored() {
		return morpheme.SkeletonOptions{}, nil
	}
	if o.MirrorTable == "" {
		return morpheme.SkeletonOptions{Mirror: morpheme.DefaultMirrorTable()}, nil
	}
	table, err := morpheme.LoadMirrorTable(o.MirrorTable)
	if err != nil {
		return morpheme.SkeletonOptions{}, err
	}
	return morpheme.SkeletonOptions{Mirror: table}, nil
}

// Convert decodes a sequence against its skeleton and renders the whole SMD
// document in memory.
func Convert(seq, set io.ReaderAt, o *config.Options, l *utils.Logger) (*Result, error) {
	skelOpts, err := skeletonOptions(o)
	if err != nil {
		return nil, err
	}
	skel, err := morpheme.ParseSkeleton(set, skelOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse skeleton")
	}

	d, err := morpheme.NewDecoder(seq, skel, l)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse sequence")
	}
	log.Printf("%v sec %v fps", d.Header.Duration, d.Header.FPS)
	if o.Dump {
		utils.LogDump(d.Header, d.Base, skel)
	}

	opts := smd.OptionsFrom(o, d.Header.FPS)
	if opts.Expansion > 1 {
		log.Printf("Expanding %dx to %v fps", opts.Expansion, d.Header.FPS*float64(opts.Expansion))
	}

	var buf bytes.Buffer
	w := smd.NewWriter(&buf, opts)
	w.WriteNodes(skel)
	w.WriteSkeleton(skel)

	log.Printf("%d segments", d.SegmentCount)
	if err := d.DecodeSegments(func(index int, h *morpheme.SegmentHeader, t *morpheme.PoseTable) error {
		log.Printf("%d frames", h.FrameCount)
		if o.Dump {
			utils.LogDump(h)
		}
		return w.WriteSegment(h, t)
	}); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode sequence")
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &Result{
		SMD:      buf.Bytes(),
		Skeleton: skel,
		Header:   d.Header,
		Segments: d.SegmentCount,
		Frames:   w.Frames(),
	}, nil
}

// Joints is the bind pose of skel in output units of o.
func Joints(skel *morpheme.Skeleton, o *config.Options) []gltfutils.Joint {
	scale := morpheme.PositionScale
	if o.Convention() == config.ConventionModern {
		scale *= o.UnitScale
	}
	joints := make([]gltfutils.Joint, len(skel.Bones))
	for i, b := range skel.Bones {
		joints[i] = gltfutils.Joint{
			Name:        b.Name,
			Parent:      int(b.ParentCode),
			Translation: skel.BindTranslations[i].Mul(scale),
			Rotation:    skel.BindRotations[i],
		}
	}
	return joints
}

func ExportGLTF(w io.Writer, skel *morpheme.Skeleton, o *config.Options) error {
	return gltfutils.ExportBinary(w, gltfutils.SkeletonDocument(Joints(skel, o)))
}

// ConvertFile converts seqPath and writes <seq>.smd next to it, plus
// <seq>.glb when enabled. Nothing is written when conversion fails.
func ConvertFile(seqPath string, o *config.Options, l *utils.Logger) (string, error) {
	setPath := AnimSetPath(seqPath)
	set, err := os.Open(setPath)
	if err != nil {
		return "", errors.Wrapf(err, "Animset not found")
	}
	defer set.Close()

	seq, err := os.Open(seqPath)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to read file")
	}
	defer seq.Close()

	res, err := Convert(seq, set, o, l)
	if err != nil {
		return "", errors.Wrapf(err, "%s", seqPath)
	}

	outPath := OutputPath(seqPath)
	if err := ioutil.WriteFile(outPath, res.SMD, 0644); err != nil {
		return "", errors.Wrapf(err, "Failed to create output file")
	}

	if o.GLTF {
		var glb bytes.Buffer
		if err := ExportGLTF(&glb, res.Skeleton, o); err != nil {
			return outPath, errors.Wrapf(err, "Failed to export gltf")
		}
		if err := ioutil.WriteFile(GLTFPath(seqPath), glb.Bytes(), 0644); err != nil {
			return outPath, errors.Wrapf(err, "Failed to create gltf file")
		}
	}
	return outPath, nil
}
