// Command supervisor boots one server definition from a config file and
// runs it to completion, per spec §6: load a JSON array of server
// definitions, select the one matching -r's sid, boot its supervisor,
// and block until SIGINT or SIGTERM arrives, then stop the supervisor.
//
// Grounded on the teacher's cmd/main.go boot sequence (fx app +
// signal.Notify shutdown), generalized from the fx dependency-injection
// container to a plain supervisor.New/Start/Stop call, since the actor
// runtime has no DI graph of its own to wire.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fluxorio/actorrt/pkg/actor/supervisor"
	"github.com/fluxorio/actorrt/pkg/admin"
	"github.com/fluxorio/actorrt/pkg/config"
	"github.com/fluxorio/actorrt/pkg/logging"
	"github.com/fluxorio/actorrt/pkg/metrics"
	"github.com/fluxorio/actorrt/services/echo"
	"github.com/fluxorio/actorrt/services/kvstore"
	"github.com/fluxorio/actorrt/services/metricscollector"
)

// Exit codes per spec §6.
const (
	exitOK            = 0
	exitConfigMissing = 1
	exitParseError    = 2
	exitSidNotFound   = 3
	exitUsage         = -1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("supervisor", flag.ContinueOnError)
	configPath := fs.String("c", "", "path to a fleet config file (JSON array of server definitions)")
	sid := fs.Int("r", 0, "sid of the server definition to run")
	servicePath := fs.String("f", "", "run a single service type in a one-worker, one-service supervisor")
	jsonLogs := fs.Bool("json-logs", false, "emit newline-delimited JSON logs instead of plain text")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *configPath == "" && *servicePath == "" {
		fmt.Fprintln(os.Stderr, "usage: supervisor -c <config.json> -r <sid> | -f <service-type>")
		return exitUsage
	}

	log := logging.New(*jsonLogs)

	var def *config.ServerConfig
	if *servicePath != "" {
		def = config.DefaultServerConfig()
		def.Workers = 1
		def.Services = []config.ServiceConfig{{Name: *servicePath, Type: *servicePath}}
	} else {
		if _, err := os.Stat(*configPath); err != nil {
			log.Errorf("config file not found: %s", *configPath)
			return exitConfigMissing
		}
		defs, err := config.LoadServerDefs(*configPath)
		if err != nil {
			log.Errorf("parsing config: %v", err)
			return exitParseError
		}
		selected, ok := config.SelectServerDef(defs, *sid)
		if !ok {
			log.Errorf("no server definition with sid=%d", *sid)
			return exitSidNotFound
		}
		def = selected
	}

	return boot(def, log)
}

func boot(def *config.ServerConfig, log logging.Logger) int {
	sup := supervisor.New(def.Workers, time.Duration(def.TickMS)*time.Millisecond)
	sup.RegisterFactory("echo", echo.New)
	sup.RegisterFactory("kvstore", kvstore.New)
	sup.RegisterFactory("metrics", metricscollector.New)

	var m *metrics.Metrics
	if def.Metrics.Enabled {
		m = metrics.New()
		sup.AttachMetrics(m)
	}

	gate := admin.NewGate(def.Admin.SigningKey)

	for _, svc := range def.Services {
		if err := sup.Router().NewService(svc.Type, []byte(svc.Config), svc.Unique, svc.WorkerHint, 0, 0); err != nil {
			log.Errorf("booting service %s (%s): %v", svc.Name, svc.Type, err)
			return exitParseError
		}
	}

	sup.Start()
	log.Infof("supervisor running: sid=%d workers=%d services=%d", def.Sid, def.Workers, len(def.Services))

	var metricsSrv *fasthttp.Server
	if def.Metrics.Enabled && def.Metrics.ListenAddr != "" {
		metricsSrv = startMetricsServer(def.Metrics.ListenAddr, m, gate, log)
	}

	waitForShutdown(log)

	if metricsSrv != nil {
		_ = metricsSrv.ShutdownWithContext(context.Background())
	}
	sup.Stop()
	log.Info("supervisor stopped")
	return exitOK
}

// startMetricsServer mounts the Prometheus handler and a liveness probe
// behind fasthttp, the only place in this module fasthttp is used; the
// actor core itself never depends on an HTTP transport (spec §9's
// ownership tiers).
func startMetricsServer(addr string, m *metrics.Metrics, gate *admin.Gate, log logging.Logger) *fasthttp.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", withAdminGate(gate, m.Handler()))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &fasthttp.Server{Handler: fasthttpadaptor.NewFastHTTPHandler(mux)}
	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			log.Errorf("metrics server on %s: %v", addr, err)
		}
	}()
	log.Infof("metrics endpoint listening on %s", addr)
	return srv
}

// withAdminGate passes every request through gate.Authorize as the path
// "metrics.read". "read" is not a privileged verb, so the gate lets
// /metrics through with or without a token, whether or not a signing
// key is configured.
func withAdminGate(gate *admin.Gate, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if err := gate.Authorize("metrics.read", token); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func waitForShutdown(log logging.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received signal %v, draining", sig)
}
