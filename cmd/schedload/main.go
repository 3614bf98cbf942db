// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The schedload command drives the bucketed work scheduler with
// synthetic load and verifies its serialization guarantees, exposing
// scheduler metrics and debug endpoints over HTTP while it runs.
package main

import (
	"flag"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/rand"

	"github.com/aristanetworks/gocollections/monitor"
	"github.com/aristanetworks/gocollections/sched"
)

type workItem struct {
	id     int
	bucket int64
}

func main() {
	items := flag.Int("items", 10000, "Number of work items to enqueue")
	buckets := flag.Int64("buckets", 64, "Number of distinct buckets")
	parallelism := flag.Int("parallelism", 8, "Max concurrently executing items, 0 for unlimited")
	work := flag.Duration("work", time.Millisecond, "Simulated duration of one item")
	listenAddr := flag.String("listenaddr", "", "Address for the debug/metrics server, empty to disable")
	flag.Parse()

	// One flag per bucket catches any violation of the one-item-per-
	// bucket guarantee.
	running := make([]atomic.Bool, *buckets)
	var executed, violations atomic.Int64

	routine := func(w workItem) {
		if !running[w.bucket].CompareAndSwap(false, true) {
			violations.Add(1)
			glog.Errorf("bucket %d: two items in flight", w.bucket)
		}
		time.Sleep(*work)
		executed.Add(1)
		running[w.bucket].Store(false)
	}

	s, err := sched.New(routine, sched.WithMaxParallelism[workItem](*parallelism))
	if err != nil {
		glog.Fatalf("Can't create scheduler: %v", err)
	}

	if *listenAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(sched.NewCollector(s))
		srv := monitor.New(*listenAddr)
		srv.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go srv.Run()
	}

	start := time.Now()
	for i := 0; i < *items; i++ {
		b := rand.Int63n(*buckets)
		s.Enqueue(workItem{id: i, bucket: b}, b, uint8(rand.Intn(4)))
	}
	glog.Infof("enqueued %d items across %d buckets", *items, *buckets)

	drained := s.StopAndWait()
	elapsed := time.Since(start)

	fmt.Printf("executed %d, drained %d of %d in %v (pending now %d)\n",
		executed.Load(), len(drained), *items, elapsed, s.Pending())
	if v := violations.Load(); v > 0 {
		glog.Fatalf("%d bucket serialization violations", v)
	}
}
