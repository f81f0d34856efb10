// go-ant
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ant.
//
// go-ant is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ant is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ant; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/internal/config"
	"github.com/ZaparooProject/go-ant/internal/logging"
	"github.com/ZaparooProject/go-ant/metrics"
	"github.com/ZaparooProject/go-ant/polling"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type monitorFlags struct {
	sensors     []string
	metricsAddr string
	duration    time.Duration
	virtual     bool
	quick       bool
}

type sensorRequest struct {
	sensor       ant.SensorType
	deviceNumber uint16
	quick        bool
}

func newMonitorCmd(root *rootFlags) *cobra.Command {
	flags := &monitorFlags{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Connect to sensors and print their readings",
		Example: `  antmon monitor --sensor heart-rate --sensor power:12345
  antmon monitor --virtual --duration 10s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if flags.virtual {
				cfg.Device.Transport = "virtual"
			}
			if flags.metricsAddr != "" {
				cfg.Metrics.Enable = true
				cfg.Metrics.Addr = flags.metricsAddr
			}

			logger, err := logging.InitLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if flags.duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, flags.duration)
				defer cancel()
			}

			return runMonitor(ctx, cfg, flags, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.sensors, "sensor", "s", nil,
		"Sensor to search for as type[:device], repeatable (default: config, then every type)")
	cmd.Flags().BoolVar(&flags.virtual, "virtual", false, "Use the simulated radio")
	cmd.Flags().BoolVar(&flags.quick, "quick", false, "Search with the short timeout first")
	cmd.Flags().DurationVar(&flags.duration, "duration", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func parseSensors(specs []string, configured []config.SensorConfig, quick bool) ([]sensorRequest, error) {
	var requests []sensorRequest
	for _, spec := range specs {
		name, device, _ := strings.Cut(spec, ":")
		t, err := ant.ParseSensorType(name)
		if err != nil {
			return nil, err
		}
		req := sensorRequest{sensor: t, quick: quick}
		if device != "" {
			n, err := strconv.ParseUint(device, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("%w: device number %q", ant.ErrInvalidParameter, device)
			}
			req.deviceNumber = uint16(n)
		}
		requests = append(requests, req)
	}
	if len(requests) > 0 {
		return requests, nil
	}

	for _, s := range configured {
		t, err := ant.ParseSensorType(s.Type)
		if err != nil {
			return nil, err
		}
		requests = append(requests, sensorRequest{sensor: t, deviceNumber: s.DeviceNumber, quick: s.Quick || quick})
	}
	if len(requests) > 0 {
		return requests, nil
	}

	for _, t := range ant.SensorTypes() {
		requests = append(requests, sensorRequest{sensor: t, quick: quick})
	}
	return requests, nil
}

func runMonitor(ctx context.Context, cfg *config.Config, flags *monitorFlags, out io.Writer,
	logger *zap.Logger,
) error {
	requests, err := parseSensors(flags.sensors, cfg.Sensors, flags.quick)
	if err != nil {
		return err
	}

	transport, err := openTransport(ctx, cfg.Device)
	if err != nil {
		return err
	}
	defer func() { _ = transport.Close() }()
	logger.Info("radio opened", zap.String("transport", string(transport.Type())))

	pollCfg := cfg.PollingConfig()
	presence := polling.NewPresenceTracker(pollCfg.StaleAfter, func(sensor ant.SensorType, lastSeen time.Time) {
		logger.Warn("sensor stopped sending", zap.Stringer("sensor", sensor), zap.Time("last_seen", lastSeen))
	})
	defer presence.Stop()

	opts := []ant.Option{
		ant.WithConfig(cfg.AntConfig()),
		ant.WithLogger(logger.Named("ant")),
		ant.WithCallbacks(monitorCallbacks(out, logger, presence)),
	}

	if cfg.WireLog.Enable {
		wire := ant.NewWireLogFile(cfg.WireLogFile())
		defer func() { _ = wire.Close() }()
		opts = append(opts, ant.WithWireLog(wire))
	}

	if cfg.Metrics.Enable {
		reg := metrics.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, ant.WithMetrics(collector))
		shutdown := serveMetrics(cfg.Metrics, reg, logger)
		defer shutdown()
	}

	dispatcher, err := ant.New(transport, opts...)
	if err != nil {
		return err
	}

	// The actor outlives ctx so channels can still be closed on the way out.
	actorCtx, cancelActor := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelActor()

	actor := polling.NewRadioActor(dispatcher, pollCfg)
	if err := actor.Start(actorCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = actor.Stop(stopCtx)
	}()

	if err := actor.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize radio: %w", err)
	}
	logger.Info("radio initialized")

	for _, req := range requests {
		var searchOpts []ant.SearchOption
		if req.quick {
			searchOpts = append(searchOpts, ant.QuickSearch())
		}
		if err := actor.SearchForSensor(ctx, req.sensor, req.deviceNumber, searchOpts...); err != nil {
			logger.Warn("search not started", zap.Stringer("sensor", req.sensor), zap.Error(err))
			continue
		}
		logger.Info("searching", zap.Stringer("sensor", req.sensor), zap.Uint16("device", req.deviceNumber))
	}

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := actor.CloseAllChannels(closeCtx); err != nil {
		logger.Warn("close channels", zap.Error(err))
	}
	// Let the radio confirm the closes before the transport goes away.
	waitReleased(closeCtx, actor)
	return nil
}

func waitReleased(ctx context.Context, actor *polling.RadioActor) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		channels, err := actor.Channels(ctx)
		if err != nil || len(channels) == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func monitorCallbacks(out io.Writer, logger *zap.Logger, presence *polling.PresenceTracker) ant.Callbacks {
	return ant.Callbacks{
		OnReading: func(r ant.Reading) {
			presence.Observe(r)
			_, _ = fmt.Fprintf(out, "%s %s\n", r.At.Format("15:04:05.000"), r)
		},
		OnChannelReleased: func(sensor ant.SensorType, channel int) {
			presence.Forget(sensor)
			logger.Info("channel released", zap.Stringer("sensor", sensor), zap.Int("channel", channel))
		},
		OnSensorFound: func(sensor ant.SensorType, channel int, deviceNumber uint16) {
			logger.Info("sensor found", zap.Stringer("sensor", sensor), zap.Int("channel", channel),
				zap.Uint16("device", deviceNumber))
		},
		OnSearchTimeout: func(sensor ant.SensorType) {
			logger.Warn("sensor not found", zap.Stringer("sensor", sensor))
		},
		OnRxFail: func(sensor ant.SensorType, count int) {
			logger.Warn("missed messages", zap.Stringer("sensor", sensor), zap.Int("count", count))
		},
		OnChannelError: func(sensor ant.SensorType, err error) {
			logger.Warn("channel error", zap.Stringer("sensor", sensor), zap.Error(err))
		},
		OnError: func(err error) {
			logger.Error("radio error", zap.Error(err))
		},
	}
}

func serveMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler(reg))
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", cfg.Addr), zap.String("path", cfg.Path))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
