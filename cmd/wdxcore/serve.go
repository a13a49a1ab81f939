package wdxcore

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wago/wdx-core/internal/config"
	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/filetransfer"
	"github.com/wago/wdx-core/internal/methodrun"
	"github.com/wago/wdx-core/internal/metrics"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/monitor"
	"github.com/wago/wdx-core/internal/registry"
	"github.com/wago/wdx-core/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

var serveConfigDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wdx-core service",
	Long: `Loads the service configuration, the WDM model and WDD device
documents, and keeps the resulting provider registry, monitoring-list,
file-transfer and method-run managers alive for the process lifetime.

Reads config.yaml plus the model/device directories named in it from
--config-dir, and (unless disabled in config.yaml) watches the device
directory for changes, reloading the whole device graph wholesale on any
change rather than mutating it in place.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigDir, "config-dir", ".", "Directory containing config.yaml")
	rootCmd.AddCommand(serveCmd)
}

// generation is one complete, internally consistent set of live service
// state: model, device store, provider registry, and the three managers
// bound to that store. Reload builds a fresh generation and swaps it in,
// stopping the managers of the generation it replaces (spec §3: "the live
// model is swapped wholesale on reload, never mutated in place" — extended
// here to the store/registry/managers that are all bound to one store).
type generation struct {
	model    *model.Model
	store    *device.Store
	registry *registry.Registry

	monitorMgr     *monitor.Manager
	filetransferMgr *filetransfer.Manager
	methodrunMgr   *methodrun.Manager
}

func buildGeneration(cfg config.ServiceConfig, met *metrics.Metrics) (*generation, error) {
	m, store, err := config.LoadDevices(cfg.ModelPath, cfg.DeviceDir)
	if err != nil {
		return nil, err
	}

	reg := registry.New(store)
	reg.SetModel(m)

	monitorMgr := monitor.NewManager(store)
	filetransferMgr := filetransfer.NewManager(store)
	methodrunMgr := methodrun.NewManager()

	monitorMgr.SetMetrics(met)
	filetransferMgr.SetMetrics(met)
	methodrunMgr.SetMetrics(met)

	reg.AddUnregisterHook(filetransferMgr.EvictProvider)

	return &generation{
		model:           m,
		store:           store,
		registry:        reg,
		monitorMgr:      monitorMgr,
		filetransferMgr: filetransferMgr,
		methodrunMgr:    methodrunMgr,
	}, nil
}

func (g *generation) stop() {
	g.monitorMgr.Stop()
	g.filetransferMgr.Stop()
	g.methodrunMgr.Stop()
}

// serviceState holds the current generation behind a mutex so a reload can
// swap it out while callers (a future transport layer, the CLI's list
// commands) read a consistent snapshot.
type serviceState struct {
	mu  sync.RWMutex
	gen *generation
}

func (s *serviceState) current() *generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *serviceState) reload(cfg config.ServiceConfig, met *metrics.Metrics) {
	next, err := buildGeneration(cfg, met)
	if err != nil {
		logging.Error("serve", err, "reload failed, keeping previous generation")
		return
	}

	s.mu.Lock()
	prev := s.gen
	s.gen = next
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
	logging.Info("serve", "reloaded device graph: %d device(s)", len(next.store.All()))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigDir)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	state := &serviceState{}
	state.reload(cfg, met)
	if state.current() == nil {
		return nil
	}

	var watcher *config.Watcher
	if cfg.WatchDeviceDir {
		watcher = config.NewWatcher(cfg.DeviceDir, func() { state.reload(cfg, met) })
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.MetricsListenAddr, Handler: mux}

	if cfg.MetricsListenAddr != "" {
		go func() {
			logging.Info("serve", "metrics listening on %s", cfg.MetricsListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("serve", err, "metrics server stopped unexpectedly")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logging.Info("serve", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	state.current().stop()
	return nil
}
