package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/vfs"
)

// Server converts sequences below a directory on request. Every request
// runs its own conversion.
type Server struct {
	dir  vfs.Directory
	opts *config.Options
}

func NewServer(d vfs.Directory, o *config.Options) *Server {
	return &Server{dir: d, opts: o}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/sequences", s.HandlerAjaxSequences)
	r.HandleFunc("/json/sequence/{path:.*}", s.HandlerAjaxSequence)
	r.HandleFunc("/smd/{path:.*}", s.HandlerDumpSMD)
	r.HandleFunc("/gltf/{path:.*}", s.HandlerDumpGLTF)
	return r
}

func StartServer(addr string, d vfs.Directory, o *config.Options) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewServer(d, o).Router())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
