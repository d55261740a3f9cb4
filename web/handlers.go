package web

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/convert"
	"github.com/mogaika/morpheme_converter/vfs"
	"github.com/mogaika/morpheme_converter/webutils"
)

// SequenceInfo is the /json/sequence answer.
type SequenceInfo struct {
	Path     string
	AnimSet  string
	Duration float64
	FPS      float64
	Segments int
	Frames   int
	Bones    []string
}

// animSetPath is convert.AnimSetPath over slash separated paths.
func animSetPath(seqPath string) string {
	dir := path.Dir(seqPath)
	return path.Join(path.Dir(dir), path.Base(dir)+convert.AnimSetExt)
}

func errorStatus(err error) int {
	if os.IsNotExist(errors.Cause(err)) {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func openFile(d vfs.Directory, p string) (vfs.File, error) {
	f, err := vfs.GetFile(d, p)
	if err != nil {
		return nil, err
	}
	if err := f.Open(); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Server) convertRequest(w http.ResponseWriter, r *http.Request) (string, *convert.Result, bool) {
	p := mux.Vars(r)["path"]
	if !strings.HasSuffix(p, convert.SequenceExt) {
		webutils.WriteError(w, http.StatusBadRequest, errors.Errorf("%q is not a %s file", p, convert.SequenceExt))
		return p, nil, false
	}

	set, err := openFile(s.dir, animSetPath(p))
	if err != nil {
		webutils.WriteError(w, errorStatus(err), errors.Wrapf(err, "Animset not found"))
		return p, nil, false
	}
	defer set.Close()

	seq, err := openFile(s.dir, p)
	if err != nil {
		webutils.WriteError(w, errorStatus(err), err)
		return p, nil, false
	}
	defer seq.Close()

	res, err := convert.Convert(seq, set, s.opts, nil)
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, errors.Wrapf(err, "%s", p))
		return p, nil, false
	}
	return p, res, true
}

func (s *Server) HandlerAjaxSequences(w http.ResponseWriter, r *http.Request) {
	sequences := make([]string, 0)
	err := vfs.Walk(s.dir, func(p string, f vfs.File) error {
		if strings.HasSuffix(p, convert.SequenceExt) {
			sequences = append(sequences, p)
		}
		return nil
	})
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	webutils.WriteJson(w, sequences)
}

func (s *Server) HandlerAjaxSequence(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.convertRequest(w, r)
	if !ok {
		return
	}
	bones := make([]string, len(res.Skeleton.Bones))
	for i, b := range res.Skeleton.Bones {
		bones[i] = b.Name
	}
	webutils.WriteJson(w, &SequenceInfo{
		Path:     p,
		AnimSet:  animSetPath(p),
		Duration: res.Header.Duration,
		FPS:      res.Header.FPS,
		Segments: res.Segments,
		Frames:   res.Frames,
		Bones:    bones,
	})
}

func (s *Server) HandlerDumpSMD(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.convertRequest(w, r)
	if !ok {
		return
	}
	webutils.WriteFile(w, res.SMD, path.Base(convert.OutputPath(p)), "text/plain; charset=utf-8")
}

func (s *Server) HandlerDumpGLTF(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.convertRequest(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := convert.ExportGLTF(&buf, res.Skeleton, s.opts); err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to export gltf"))
		return
	}
	webutils.WriteFile(w, buf.Bytes(), path.Base(convert.GLTFPath(p)), "model/gltf-binary")
}
