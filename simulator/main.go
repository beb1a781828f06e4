// Simulator emulates a household IoT device (temperature, humidity, motion,
// light, door and smoke sensors) and reports its readings to a collector.
//
// Usage example: simulator -server=http://localhost:5000 -interval=8s
//
// Optional flags:
//
//	-server: collector base URL, readings are posted to /api/sensors/update
//	-interval: time between two sensor updates
//	-timeout: timeout of a single send
//	-mqtt-broker: also publish readings to home/sensors/* on this broker
//	-config: TOML file with the same settings (server_url, interval, ...)
//	-env-file: .env file with SIM_* variables
//	-seed: random seed for a reproducible run
//	-max-ticks: stop after this many ticks
//
// The simulator runs until interrupted and always exits cleanly; failed sends
// are printed and never stop it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
	simInfrastructure "github.com/samoilenko/home_sensors/simulator/infrastructure"
	"github.com/samoilenko/home_sensors/simulator/infrastructure/console"
)

func endWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	simInfrastructure.PrintUsage(os.Stderr)
	os.Exit(1)
}

func main() {
	ctx, finish := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer finish()

	config, err := simInfrastructure.LoadAppConfig(afero.NewOsFs(), os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		simInfrastructure.PrintUsage(os.Stderr)
		return
	}
	if err != nil {
		endWithError(err)
	}

	if config.ShowVersion {
		fmt.Println(simInfrastructure.UserAgent())
		return
	}

	stdlibLogger := log.New(os.Stderr, "", log.LstdFlags)
	logger := simDomain.NewStdLogger(stdlibLogger, config.DeviceID)

	logger.Info("starting %s as device %s", simInfrastructure.UserAgent(), config.DeviceID)
	logger.Info("reporting to %s every %s", config.CollectorAddress.UpdateURL(), config.TickInterval.String())

	group, groupCtx := errgroup.WithContext(ctx)

	var reporter simDomain.Reporter = simInfrastructure.NewHTTPReporter(
		config.CollectorAddress,
		config.SendTimeout,
		config.DeviceID,
		logger,
	)

	if config.MQTTBroker != "" {
		mqttClient := simInfrastructure.NewMQTTClient(config.MQTTBroker, config.DeviceID, logger)
		group.Go(func() error {
			return simInfrastructure.RunMQTTSession(groupCtx, mqttClient, logger)
		})
		reporter = simDomain.WithMirrors(reporter, config.SendTimeout, logger,
			simInfrastructure.NewMQTTPublisher(mqttClient, config.SendTimeout),
		)
		logger.Info("mirroring readings to MQTT broker %s", config.MQTTBroker)
	}

	stats := &simInfrastructure.SendStats{}
	reporter = simInfrastructure.NewStatsReporter(reporter, stats)

	display := console.NewDisplay(
		console.Stdout(),
		console.UseColor(config.Color, os.Stdout),
		config.Locale,
		stats,
	)

	loop := simDomain.NewSimulationLoop(
		simDomain.NewSensorState(),
		reporter,
		display,
		simInfrastructure.SystemClock{},
		simInfrastructure.NewRandomSource(config.Seed),
		config.TickInterval,
		logger,
	).WithMaxTicks(config.MaxTicks)

	group.Go(func() error {
		// a tick limit ends the run like an interrupt would
		defer finish()
		loop.Run(groupCtx)
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("shutdown error: %s", err.Error())
	}

	logger.Info("simulator stopped: %s", stats.Summary())
}
