package main

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type GraphMetrics struct {
	Replica *ReplicaMetrics
}

type ReplicaMetrics struct {
	Applied  metrics.Counter
	Rejected metrics.Counter
}

func NewGraphMetrics(replicaAddr string) *GraphMetrics {

	m := &GraphMetrics{}

	if replicaAddr == "" {
		m.Replica = &ReplicaMetrics{
			Applied:  discard.NewCounter(),
			Rejected: discard.NewCounter(),
		}
	} else {
		m.Replica = &ReplicaMetrics{
			Applied: prometheus.NewCounterFrom(prom.CounterOpts{
				Namespace: "crdtgraph",
				Subsystem: "replica",
				Name:      "applied_operations_total",
				Help:      "Number of operations applied to the local tree",
			}, nil),
			Rejected: prometheus.NewCounterFrom(prom.CounterOpts{
				Namespace: "crdtgraph",
				Subsystem: "replica",
				Name:      "rejected_operations_total",
				Help:      "Number of operations rejected by the local tree",
			}, nil),
		}
	}

	return m
}

func runPromHTTP(logger log.Logger, addr string) {

	if addr == "" {
		level.Debug(logger).Log("msg", "prometheus addr is empty, not exposing prometheus metrics")
		return
	}

	http.Handle("/metrics", promhttp.Handler())

	level.Info(logger).Log("msg", "prometheus handler listening", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		level.Warn(logger).Log("msg", "failed to serve prometheus metrics", "err", err)
	}
}
