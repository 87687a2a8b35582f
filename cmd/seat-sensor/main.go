// Command seat-sensor reports a seat's occupancy to MQTT and obeys remote
// "update" and "stop" commands received on the same topic.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/seat-sensor/internal/config"
	"github.com/sweeney/seat-sensor/internal/detect"
	"github.com/sweeney/seat-sensor/internal/logic"
	"github.com/sweeney/seat-sensor/internal/mqtt"
	"github.com/sweeney/seat-sensor/internal/status"
	"github.com/sweeney/seat-sensor/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, printState, err := loadConfig(args)
	if err != nil {
		return err
	}
	setupLogging(os.Stderr, cfg.Verbose)

	// Print state mode needs only the sensor line.
	if printState {
		source, err := detect.NewGPIOSource(cfg.SensorLine())
		if err != nil {
			return fmt.Errorf("init sensor: %w", err)
		}
		defer source.Close()
		return printSensorState(os.Stdout, source)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	source, err := detect.NewGPIOSource(cfg.SensorLine())
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer source.Close()

	tlsCfg, err := mqtt.LoadTLSConfig(cfg.MQTT.CAFile, cfg.MQTT.CertFile, cfg.MQTT.KeyFile)
	if err != nil {
		return err
	}

	opts := mqtt.DefaultOptions()
	opts.Broker = cfg.MQTT.Broker
	opts.ClientID = cfg.MQTT.ClientID
	opts.Topic = cfg.MQTT.Topic
	opts.SystemTopic = cfg.MQTT.SystemTopic
	opts.TLS = tlsCfg
	opts.QueueSize = cfg.MQTT.QueueSize
	opts.DrainPerSecond = cfg.MQTT.DrainPerSecond
	opts.OperationTimeout = cfg.MQTT.OperationTimeout

	client := mqtt.NewRealClient(opts)
	defer client.Close()

	// paho keeps retrying in the background; ticks retry until it succeeds.
	if err := client.Connect(); err != nil {
		slog.Warn("mqtt not connected yet, continuing offline", "broker", opts.Broker, "error", err)
	}

	startTime := time.Now()
	rec := logic.NewReconciler(cfg.Location, startTime, logic.ReportPolicy(cfg.Report))

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		Location:   cfg.Location,
		IntervalMs: cfg.Interval.Milliseconds(),
		Report:     cfg.Report,
		Broker:     cfg.MQTT.Broker,
		Topic:      cfg.MQTT.Topic,
		HTTPAddr:   cfg.HTTP,
	})
	if net := readNetworkInfo(cfg.EnvFile); net != nil {
		tracker.SetNetwork(net)
	}

	if err := client.Subscribe(cfg.MQTT.Topic, commandHandler(rec, tracker)); err != nil {
		slog.Warn("subscribe failed, will retry on reconnect", "topic", cfg.MQTT.Topic, "error", err)
	}

	tracker.SetMQTTConnected(client.IsConnected())
	publishStartup(client, tracker)

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("http status server listening", "addr", cfg.HTTP)
	}

	slog.Info("started",
		"location", cfg.Location,
		"interval", cfg.Interval,
		"report", cfg.Report,
		"broker", cfg.MQTT.Broker,
		"topic", cfg.MQTT.Topic,
		"tls", cfg.TLSEnabled())

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(source, client, rec, tracker, time.Now, ticker.C, sigCh)
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// commandHandler returns the inbound message handler. It runs on the
// transport goroutine and only touches mutex-guarded state.
func commandHandler(rec *logic.Reconciler, tracker *status.Tracker) func([]byte) {
	return func(payload []byte) {
		d := mqtt.Interpret(payload)
		if d == logic.DirectiveUnrecognized {
			// Includes our own status messages echoed back on the shared topic.
			slog.Debug("ignoring message", "payload", string(payload))
		} else {
			slog.Info("command received", "directive", d)
		}
		rec.OnDirective(d)
		if tracker != nil {
			tracker.RecordDirective(d)
		}
	}
}

func publishStartup(channel mqtt.Channel, tracker *status.Tracker) {
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := channel.PublishSystem(event); err != nil {
		if errors.Is(err, mqtt.ErrOffline) {
			slog.Info("broker offline, startup event queued for reconnect")
			return
		}
		slog.Warn("failed to publish startup event", "error", err)
		return
	}
	slog.Info("published startup event")
}

func printSensorState(w io.Writer, source detect.Source) error {
	occupied, err := source.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Fprintf(w, "Seat: %s\n", logic.SeatStatus{Occupied: occupied}.Label())
	return nil
}

// runLoop drives the reconciler from the tick channel until a stop command
// is obeyed or a signal arrives.
func runLoop(source detect.Source, channel mqtt.Channel, rec *logic.Reconciler, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	mqttStatus, _ := channel.(mqtt.ConnectionStatus)

	for {
		if rec.IsShutdown() {
			return halted(rec, tracker)
		}

		select {
		case s := <-sig:
			slog.Info("shutting down", "signal", s)
			publishShutdown(channel, mqttStatus, tracker, now(), signalName(s))
			return nil
		case <-tick:
		}

		if rec.IsShutdown() {
			return halted(rec, tracker)
		}

		t := now()
		occupied, err := source.Read()
		if err != nil {
			slog.Warn("sensor read failed, skipping tick", "error", err)
			if tracker != nil {
				tracker.RecordReadError(err)
			}
			continue
		}

		d := rec.OnTick(occupied, t)
		if tracker != nil {
			tracker.Update(d.Status, rec.Phase())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}

		if d.Terminate {
			slog.Info("stop command obeyed, exiting", "location", d.Status.Location)
			return nil
		}
		if !d.Publish {
			continue
		}

		if err := channel.Publish(d.Status); err != nil {
			if errors.Is(err, mqtt.ErrOffline) {
				slog.Warn("broker offline, will retry next tick", "status", d.Status.Label())
			} else {
				slog.Warn("publish failed, will retry next tick", "error", err)
			}
			if tracker != nil {
				tracker.RecordPublish(t, err)
			}
			continue
		}

		rec.Ack(d)
		if tracker != nil {
			tracker.RecordPublish(t, nil)
		}
		slog.Debug("published", "location", d.Status.Location, "status", d.Status.Label())
	}
}

func halted(rec *logic.Reconciler, tracker *status.Tracker) error {
	slog.Info("stop command obeyed, exiting", "location", rec.Status().Location)
	if tracker != nil {
		tracker.SetPhase(rec.Phase())
	}
	return nil
}

func publishShutdown(channel mqtt.Channel, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, at time.Time, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: at,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := channel.PublishSystem(event); err != nil {
		slog.Warn("failed to publish shutdown event", "error", err)
		return
	}
	slog.Info("published shutdown event")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
