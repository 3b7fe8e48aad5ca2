package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/iolink/pkg/bridge/mqtt"
	"github.com/robotalks/iolink/pkg/config"
	fx "github.com/robotalks/iolink/pkg/framework"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := config.Load(); err != nil {
		glog.Exit(err)
	}
	conf := config.Default()
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	links := conf.NewRegistry(reg)
	defer links.Close()
	l, err := links.Get(conf.Port)
	if err != nil {
		glog.Exit(err)
	}

	loop := fx.NewLoop().WithInterval(conf.Tick).Add(links)
	if conf.MQTTURL != "" {
		bridge, err := mqtt.NewFromURL(conf.MQTTURL, conf.DeviceID, l)
		if err != nil {
			glog.Exit(err)
		}
		loop.Add(bridge)
		glog.Infof("bridging %s as %q to %s", l.Name(), conf.DeviceID, conf.MQTTURL)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if conf.MetricsAddr != "" {
		runner.Go(fx.NamedRun("metrics", metricsServer(conf.MetricsAddr, reg)))
	}
	if err := runner.Wait(); err != nil {
		glog.Error(err)
	}
}

func metricsServer(addr string, reg *prometheus.Registry) fx.Runnable {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: addr, Handler: mux}
	return fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, server, func() error {
			glog.Infof("serving metrics on %s", addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	})
}
