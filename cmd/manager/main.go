/*
Copyright 2026.

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
	"crypto/tls"
	"flag"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	secretmanagerv1beta1 "github.com/octopilot/secret-manager-controller/api/v1beta1"
	"github.com/octopilot/secret-manager-controller/internal/artifact"
	"github.com/octopilot/secret-manager-controller/internal/backoff"
	"github.com/octopilot/secret-manager-controller/internal/config"
	"github.com/octopilot/secret-manager-controller/internal/controller"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntimeMustAddToScheme(clientgoscheme.AddToScheme)
	utilruntimeMustAddToScheme(secretmanagerv1beta1.AddToScheme)
}

func utilruntimeMustAddToScheme(addToScheme func(*runtime.Scheme) error) {
	if err := addToScheme(scheme); err != nil {
		panic(err)
	}
}

func main() {
	cfg := config.Load()

	var devMode bool
	flag.BoolVar(&devMode, "dev", false, "enable development-mode logging (console encoder instead of JSON)")
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseDevMode(devMode)))
	setupLog := ctrl.Log.WithName("setup")

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress:   cfg.MetricsAddr,
			SecureServing: true,
			TLSOpts:       []func(*tls.Config){func(c *tls.Config) { c.MinVersion = tls.VersionTLS12 }},
		},
		HealthProbeBindAddress: cfg.ProbeAddr,
		LeaderElection:         true,
		LeaderElectionID:       "secret-manager-controller-leader-election",
		Cache: cache.Options{
			DefaultWatchErrorHandler: controller.NewWatchErrorHandler(ctrl.Log.WithName("watch")),
		},
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	artifactRoot, err := os.MkdirTemp("", "secret-manager-artifacts-*")
	if err != nil {
		setupLog.Error(err, "unable to create artifact cache root")
		os.Exit(1)
	}

	artifactCache := artifact.NewCache(artifactRoot, cfg.ArtifactCacheTTL)

	reconciler := &controller.ManagedConfigReconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("managedconfig-controller"),

		ArtifactCache: artifactCache,
		Backoff:       backoff.New(cfg.BackoffFloor, cfg.BackoffCeiling),

		MinReconcileInterval:    cfg.MinReconcileInterval,
		ProviderCallTimeout:     cfg.ProviderCallTimeout,
		KustomizeTimeout:        cfg.KustomizeTimeout,
		SopsTimeout:             cfg.SopsTimeout,
		MaxConcurrentReconciles: cfg.MaxConcurrentReconciles,
		ProviderFanout:          cfg.ProviderFanout,
	}

	if err := reconciler.SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ManagedConfig")
		os.Exit(1)
	}

	if err := mgr.Add(artifactCacheEvictor{cache: artifactCache, interval: cfg.ArtifactCacheTTL}); err != nil {
		setupLog.Error(err, "unable to register artifact cache evictor")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// artifactCacheEvictor is a manager.Runnable that periodically sweeps
// internal/artifact.Cache for unreferenced, expired entries, so a
// long-lived manager doesn't accumulate resolved working trees on disk
// forever.
type artifactCacheEvictor struct {
	cache    *artifact.Cache
	interval time.Duration
}

func (e artifactCacheEvictor) Start(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.cache.EvictStale(time.Now())
		}
	}
}
