// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package monitor

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aristanetworks/glog"
)

// loglevelHandler reads and updates the global glog verbosity. GET
// returns the current level; a request with a "glog" parameter sets it.
type loglevelHandler struct{}

func (loglevelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v := r.FormValue("glog")
	if v == "" {
		fmt.Fprintf(w, "glog=%d\n", glog.VGlobal())
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		http.Error(w, fmt.Sprintf("loglevel: bad verbosity %q", v),
			http.StatusBadRequest)
		return
	}
	prev := glog.SetVGlobal(glog.Level(n))
	glog.Infof("monitor: glog verbosity %d -> %d", prev, n)
	fmt.Fprint(w, "OK\n")
}
