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

package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof" //nolint
	"os"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	cgrecord "k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"
	"github.com/sinhaashish/mayastor-control-plane/internal/config"
	"github.com/sinhaashish/mayastor-control-plane/internal/dataplane"
	"github.com/sinhaashish/mayastor-control-plane/internal/reconciler"
	"github.com/sinhaashish/mayastor-control-plane/internal/tele"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
	opts     config.Options
)

func init() {
	klog.InitFlags(nil)

	_ = clientgoscheme.AddToScheme(scheme)
	_ = v1alpha1.AddToScheme(scheme)
}

func main() {
	opts.InitFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	ctrl.SetLogger(textlogger.NewLogger(textlogger.NewConfig()))

	if opts.ProfilerAddress != "" {
		setupLog.Info("Profiler listening for requests", "profiler-address", opts.ProfilerAddress)
		go func() {
			setupLog.Error(http.ListenAndServe(opts.ProfilerAddress, nil), "listen and serve error")
		}()
	}

	// Pool create/check cycles can emit enough events to trip the recorder
	// spam filter; a larger burst keeps them all.
	broadcaster := cgrecord.NewBroadcasterWithCorrelatorOptions(cgrecord.CorrelatorOptions{
		BurstSize: 100,
	})

	restConfig := ctrl.GetConfigOrDie()
	restConfig.UserAgent = "diskpool-operator-manager"
	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: opts.MetricsBindAddr,
		},
		LeaderElection:          opts.EnableLeaderElection,
		LeaderElectionID:        "controller-leader-election-diskpool",
		LeaderElectionNamespace: opts.LeaderElectionNamespace,
		LeaseDuration:           &opts.LeaderElectionLeaseDuration,
		RenewDeadline:           &opts.LeaderElectionRenewDeadline,
		RetryPeriod:             &opts.LeaderElectionRetryPeriod,
		Cache: cache.Options{
			SyncPeriod: &opts.SyncPeriod,
			DefaultNamespaces: map[string]cache.Config{
				opts.Namespace: {},
			},
		},
		HealthProbeBindAddress: opts.HealthAddr,
		EventBroadcaster:       broadcaster,
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	if err := registerTracing(ctx); err != nil {
		setupLog.Error(err, "unable to initialize tracing")
		os.Exit(1)
	}

	dpClient := dataplane.NewHTTPClient(opts.Endpoint, opts.RequestTimeout, int(opts.Retries), ctrl.Log.WithName("dataplane"))

	// The legacy-kind migration runs before the manager's caches exist, so
	// it uses a direct client rather than mgr.GetClient().
	migrationClient, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "unable to build migration client")
		os.Exit(1)
	}
	if err := reconciler.MigrateLegacyPools(ctx, migrationClient, setupLog); err != nil {
		setupLog.Error(err, "unable to migrate legacy pool resources")
		os.Exit(1)
	}

	if err := (&reconciler.DiskPoolReconciler{
		Client:                  mgr.GetClient(),
		Recorder:                mgr.GetEventRecorderFor("diskpool-reconciler"),
		DataPlane:               dpClient,
		Pools:                   reconciler.NewInventory(),
		Interval:                opts.Interval,
		ReconcileTimeout:        opts.ReconcileTimeout,
		DisableDeviceValidation: opts.DisableDeviceValidation,
	}).SetupWithManager(mgr, controller.Options{MaxConcurrentReconciles: opts.PoolConcurrency}); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "DiskPool")
		os.Exit(1)
	}

	if err := mgr.AddReadyzCheck("ping", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to create ready check")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("ping", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to create health check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func registerTracing(ctx context.Context) error {
	if !opts.EnableTracing && opts.Jaeger == "" {
		return nil
	}
	shutdown, err := tele.InitTracing(ctx, "diskpool-operator", opts.Jaeger)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		// Allow five seconds for tracing componentry to shut down.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			setupLog.Error(err, "failed to shut down tracing")
		}
	}()
	return nil
}
