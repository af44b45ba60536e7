package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/config"
	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/handlers"
	"github.com/spencer-p/skydash/pkg/logging"
	"github.com/spencer-p/skydash/pkg/metrics"
	"github.com/spencer-p/skydash/pkg/publish"
)

func main() {
	env, err := config.FromEnv()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(env.Debug); err != nil {
		panic(err)
	}
	defer logging.Sync()

	home := env.Site()
	obs, err := home.Observer()
	if err != nil {
		logging.Fatalf("Bad home site: %v", err)
	}
	provider, err := ephem.NewProvider(obs, env.VSOP87Dir)
	if err != nil {
		logging.Fatalf("Failed to load ephemeris: %v", err)
	}
	logging.Infow("Loaded ephemeris", "site", home.Name, "bodies", provider.Bodies())

	sites, err := openSites(home)
	if err != nil {
		logging.Fatalf("Failed to open site store: %v", err)
	}

	checkSunrise(provider, env.Resolution, time.Now())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if broker, ok := env.Broker(); ok {
		p, err := publish.Dial(broker)
		if err != nil {
			logging.Fatalf("Failed to connect to MQTT: %v", err)
		}
		defer p.Close()
		alm := almanac.New(provider, env.Resolution)
		go publish.Run(ctx, p, home.Name, env.PublishEvery, alm.Reports)
		logging.Infow("Publishing to MQTT", "broker", broker.URL, "every", env.PublishEvery)
	}

	r := mux.NewRouter().StrictSlash(true)
	r.Use(metrics.LatencyHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", handleHealth)
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.New(handlers.Options{
		Provider:    provider,
		Sites:       sites,
		DefaultSite: home.Name,
		Resolution:  env.Resolution,
		CacheTTL:    env.CacheTTL,
	}).Register(s)

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Infof("Listening and serving on %s%s", srv.Addr, env.Prefix)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatalf("Server failed: %v", err)
	}
}
