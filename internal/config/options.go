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

// Package config collects the process-wide options of the control plane
// manager behind a single flag set: an Options struct populated by
// pflag, rather than scattering package-level flag vars across the
// binary.
package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Options holds every flag-configurable setting of the manager process:
// the data-plane client knobs plus the ambient manager flags (metrics,
// health, leader election, concurrency).
type Options struct {
	// Interval is the steady-state reconcile requeue period.
	Interval time.Duration
	// RequestTimeout bounds a single data-plane HTTP call.
	RequestTimeout time.Duration
	// Retries is the maximum number of retryablehttp retries after the
	// first attempt of a data-plane call.
	Retries uint32
	// Endpoint is the base URL of the data-plane REST agent.
	Endpoint string
	// Namespace prefixes every key this process writes to the store, and
	// is the Kubernetes namespace the manager watches when non-empty.
	Namespace string
	// Jaeger is the optional OTLP/Jaeger collector endpoint. Empty disables
	// tracing export (spans are still created, just never exported).
	Jaeger string
	// DisableDeviceValidation skips the reconciler's block-device lookup
	// that attributes a failed pool create to a missing disk, for use
	// against test fixtures with synthetic disk URIs.
	DisableDeviceValidation bool

	// MetricsBindAddr is the address the Prometheus metrics endpoint binds to.
	MetricsBindAddr string
	// HealthAddr is the address the healthz/readyz endpoint binds to.
	HealthAddr string
	// EnableLeaderElection toggles controller-runtime leader election.
	EnableLeaderElection bool
	// LeaderElectionNamespace overrides the namespace leader election runs in.
	LeaderElectionNamespace string
	// LeaderElectionLeaseDuration, RenewDeadline and RetryPeriod tune the
	// leader election client (defaults 15s/10s/2s).
	LeaderElectionLeaseDuration time.Duration
	LeaderElectionRenewDeadline time.Duration
	LeaderElectionRetryPeriod   time.Duration

	// SyncPeriod is the minimum interval at which the informer cache
	// performs a full relist, independent of Interval's requeue cadence.
	SyncPeriod time.Duration
	// PoolConcurrency is the number of DiskPools processed simultaneously.
	PoolConcurrency int
	// ReconcileTimeout bounds a single Reconcile call.
	ReconcileTimeout time.Duration
	// EnableTracing does not install an exporter on its own: span export
	// is installed whenever Jaeger is non-empty, whatever this flag says,
	// and while Jaeger is empty spans are created but never exported.
	EnableTracing bool
	// ProfilerAddress optionally binds a pprof endpoint.
	ProfilerAddress string
	// WatchFilterValue is registered as a flag but is not passed to the
	// manager or the controller: every DiskPool in the watched namespace
	// is reconciled whatever its labels.
	WatchFilterValue string
}

// DefaultLoopTimeout bounds a single reconcile call absent an override.
const DefaultLoopTimeout = 90 * time.Minute

// InitFlags registers every Options field on fs.
func (o *Options) InitFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.Interval, "interval", 30*time.Second,
		"Steady-state interval between reconciles of a settled DiskPool.")

	fs.DurationVar(&o.RequestTimeout, "request-timeout", 5*time.Second,
		"Timeout applied to a single data-plane HTTP request.")

	var retries uint32 = 10
	o.Retries = retries
	fs.Uint32Var(&o.Retries, "retries", retries,
		"Maximum retry attempts for a data-plane HTTP request (minimum 1).")

	fs.StringVar(&o.Endpoint, "endpoint", "",
		"Base URL of the data-plane REST agent, e.g. http://127.0.0.1:8081/v0.")

	fs.StringVar(&o.Namespace, "namespace", "mayastor",
		"Namespace prefix applied to store keys and watched custom resources.")

	fs.StringVar(&o.Jaeger, "jaeger", "",
		"Jaeger/OTLP collector endpoint. If unspecified, tracing spans are not exported.")

	fs.BoolVar(&o.DisableDeviceValidation, "disable-device-validation", false,
		"Skip the block-device lookup that attributes a failed pool creation to a missing disk.")

	fs.StringVar(&o.MetricsBindAddr, "metrics-bind-addr", ":8080",
		"The address the metric endpoint binds to.")

	fs.StringVar(&o.HealthAddr, "health-addr", ":9440",
		"The address the health endpoint binds to.")

	fs.BoolVar(&o.EnableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. Enabling this will ensure there is only one active controller manager.")

	fs.StringVar(&o.LeaderElectionNamespace, "leader-election-namespace", "",
		"Namespace that the controller performs leader election in. If unspecified, the controller will discover which namespace it is running in.")

	fs.DurationVar(&o.LeaderElectionLeaseDuration, "leader-elect-lease-duration", 15*time.Second,
		"Interval at which non-leader candidates will wait to force acquire leadership (duration string)")

	fs.DurationVar(&o.LeaderElectionRenewDeadline, "leader-elect-renew-deadline", 10*time.Second,
		"Duration that the leading controller manager will retry refreshing leadership before giving up (duration string)")

	fs.DurationVar(&o.LeaderElectionRetryPeriod, "leader-elect-retry-period", 2*time.Second,
		"Duration the LeaderElector clients should wait between tries of actions (duration string)")

	fs.DurationVar(&o.SyncPeriod, "sync-period", 10*time.Minute,
		"The minimum interval at which watched resources are reconciled (e.g. 15m)")

	fs.IntVar(&o.PoolConcurrency, "diskpool-concurrency", 10,
		"Number of DiskPools to process simultaneously")

	fs.DurationVar(&o.ReconcileTimeout, "reconcile-timeout", DefaultLoopTimeout,
		"The maximum duration a reconcile loop can run (e.g. 90m)")

	fs.BoolVar(&o.EnableTracing, "enable-tracing", false,
		"Enable tracing. Spans are exported only when --jaeger is set, and setting --jaeger exports them even without this flag.")

	fs.StringVar(&o.ProfilerAddress, "profiler-address", "",
		"Bind address to expose the pprof profiler (e.g. localhost:6060)")

	fs.StringVar(&o.WatchFilterValue, "watch-filter", "",
		"Label value for the openebs.io/watch-filter label. Accepted but not applied: the controller reconciles all DiskPools in the watched namespace.")
}
