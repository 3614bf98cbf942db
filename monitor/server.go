// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package monitor provides an embedded HTTP server exposing debug
// endpoints for the demo binaries: expvar, pprof, glog verbosity and
// any handlers the binary registers.
package monitor

import (
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"sort"

	"github.com/aristanetworks/glog"
)

// Server is a debug HTTP server. Construct with New, register extra
// handlers with Handle, then call Run.
type Server struct {
	addr  string
	mux   *http.ServeMux
	paths []string
}

// New returns a Server listening on addr once Run is called.
func New(addr string) *Server {
	s := &Server{addr: addr, mux: http.NewServeMux()}
	s.mux.HandleFunc("/debug", s.index)
	s.mux.Handle("/debug/vars", expvar.Handler())
	s.mux.HandleFunc("/debug/pprof/", pprof.Index)
	s.mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	s.mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	s.mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	s.mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	s.mux.Handle("/debug/loglevel", loglevelHandler{})
	s.paths = []string{"/debug/vars", "/debug/pprof", "/debug/loglevel"}
	return s
}

// Handle registers an additional handler under the given path.
func (s *Server) Handle(path string, h http.Handler) {
	s.mux.Handle(path, h)
	s.paths = append(s.paths, path)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	paths := append([]string(nil), s.paths...)
	sort.Strings(paths)
	fmt.Fprint(w, "<html><head><title>/debug</title></head><body>\n")
	for _, p := range paths {
		fmt.Fprintf(w, "<div><a href=%q>%s</a></div>\n", p, p)
	}
	fmt.Fprint(w, "</body></html>\n")
}

// Run serves until the listener fails. It blocks.
func (s *Server) Run() {
	if err := http.ListenAndServe(s.addr, s.mux); err != nil {
		glog.Errorf("monitor: server on %s: %v", s.addr, err)
	}
}
