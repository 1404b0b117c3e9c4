package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/specs-feup/specs-go/internal/cli/output"
	"github.com/specs-feup/specs-go/internal/infra/confloader"
	"github.com/specs-feup/specs-go/internal/infra/shutdown"
	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/internal/telemetry/metric"
	"github.com/specs-feup/specs-go/pkg/datastore"
)

// WatchCommand returns the store watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Reload the store whenever the configuration file changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g. :9100)",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Time allowed for a clean stop",
				Value: 5 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "settle-delay",
				Usage: "Quiet time after a change before the file is read again",
				Value: confloader.DefaultSettleDelay,
			},
			&cli.DurationFlag{
				Name:  "reload-interval",
				Usage: "Minimum time between reloads (0 for no limit)",
				Value: confloader.DefaultReloadInterval,
			},
		},
		Action: storeWatch,
	}
}

func storeWatch(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if flags.Config == "" {
		return cli.Exit("store watch needs a configuration file (--config)", 2)
	}
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	log := Logger(c).With("store", def.Name())

	h := shutdown.NewHandler(c.Duration("shutdown-timeout"), log)
	defer h.Shutdown()

	engine, closeEngine, err := optionalEngine(c)
	if err != nil {
		return err
	}
	h.OnShutdown("storage", func(context.Context) error {
		closeEngine()
		return nil
	})

	reg := metric.NewRegistry()
	if engine != nil {
		if err := engine.RegisterMetrics(reg.Registerer()); err != nil {
			return err
		}
	}
	storeLog := logger.StoreObserver(log)
	observer := datastore.ObserverFunc(func(store string, op datastore.Op, key string, err error) {
		reg.Observe(store, op, key, err)
		storeLog.Observe(store, op, key, err)
	})

	reloader, err := confloader.NewReloader(func() (*datastore.Store, error) {
		return resolveWith(c, def, engine, datastore.WithObserver(observer))
	}, log,
		confloader.WithSettleDelay(c.Duration("settle-delay")),
		confloader.WithReloadInterval(c.Duration("reload-interval")),
	)
	if err != nil {
		return err
	}
	reg.ObserveReload(def.Name(), unixNow(), nil)
	if err := reg.Registerer().Register(metric.NewCollector(reloader.Sizes)); err != nil {
		return err
	}

	reloader.OnReload(func(s *datastore.Store, err error) {
		reg.ObserveReload(s.Name(), unixNow(), err)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "reload failed, keeping previous values: %v\n", err)
			return
		}
		if err := render(c, output.NewStoreView(s, flags.ShowSecrets)); err != nil {
			log.Warn("cannot render store", "error", err)
		}
	})

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := reloader.Attach(w, flags.Config); err != nil {
		w.Stop()
		return err
	}
	w.StartAsync()
	h.OnShutdown("watcher", func(context.Context) error { return w.Stop() })
	h.OnShutdown("reloader", func(context.Context) error {
		reloader.Stop()
		return nil
	})

	if addr := c.String("metrics-addr"); addr != "" {
		srv, _, err := serveMetrics(addr, reg, log)
		if err != nil {
			return err
		}
		h.OnShutdown("metrics", srv.Shutdown)
	}

	if err := render(c, output.NewStoreView(reloader.Current(), flags.ShowSecrets)); err != nil {
		return err
	}
	log.Info("watching configuration", "path", flags.Config)
	return h.Wait(c.Context)
}

// serveMetrics serves reg on addr and returns the server with the address
// it listens on.
func serveMetrics(addr string, reg *metric.Registry, log logger.Logger) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", ln.Addr().String())
	return srv, ln.Addr().String(), nil
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
