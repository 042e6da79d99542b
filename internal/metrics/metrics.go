/*
Copyright 2024 The Mayastor Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics registers the control plane's Prometheus collectors
// against controller-runtime's shared registry, so they are served from
// the manager's metrics endpoint alongside the built-in collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// ReconcileTotal counts Reconcile calls by outcome.
	ReconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "diskpool_reconcile_total",
		Help: "Total number of DiskPool reconciles, partitioned by outcome.",
	}, []string{"outcome"})

	// ReconcileDuration observes wall-clock time spent in a single Reconcile call.
	ReconcileDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diskpool_reconcile_duration_seconds",
		Help:    "Duration of a single DiskPool Reconcile call.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// PoolStatus is a gauge of 1 set against the pool's current observed
	// PoolStatusPhase label, all other phase labels held at 0 for the pool.
	PoolStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "diskpool_status",
		Help: "Observed pool status per DiskPool, one time series per (name, phase) pair.",
	}, []string{"name", "phase"})

	// DataplaneRequestTotal counts outbound REST calls to the data-plane agent.
	DataplaneRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dataplane_request_total",
		Help: "Total data-plane REST requests, partitioned by method and outcome.",
	}, []string{"method", "outcome"})

	// SchedulerSelections counts successful and failed pool selections.
	SchedulerSelections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_selection_total",
		Help: "Total pool selection attempts, partitioned by outcome.",
	}, []string{"outcome"})
)

func init() {
	metrics.Registry.MustRegister(
		ReconcileTotal,
		ReconcileDuration,
		PoolStatus,
		DataplaneRequestTotal,
		SchedulerSelections,
	)
}
