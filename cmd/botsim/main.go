package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/minefield"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/solver"
)

var (
	log = logrus.New()

	configPath string
	config     = DefaultConfig()
)

func init() {
	const (
		defaultConfigPath = ""
		usage             = "config file path"
	)
	flag.StringVar(&configPath, "config", defaultConfigPath, usage)
	flag.StringVar(&configPath, "c", defaultConfigPath, usage+" (shorthand)")
}

func setupLogging() {
	logLevel := logrus.InfoLevel
	if config.Development() {
		logLevel = logrus.DebugLevel
	}
	loggers := []*logrus.Logger{log, solver.Log, grid.Log, minefield.Log}
	for _, l := range loggers {
		l.SetLevel(logLevel)
		l.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	if config.LogFile == "" {
		return
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   config.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      logLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		log.Fatal("unable to create session log file hook: ", err)
	}
	for _, l := range loggers {
		l.AddHook(hook)
	}
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	if configPath != "" {
		if err := ReadConfig(configPath, &config); err != nil {
			log.Fatalf("unable to read config %s: %s", configPath, err.Error())
		}
	}

	setupLogging()

	log.Info("starting up, mode = ", config.Mode)
	log.WithFields(config.Fields()).Debug("config")

	if config.DebugAddr != "" {
		if err := runWatch(mainCtx); err != nil {
			log.Fatal("watch mode failed: ", err)
		}
		return
	}

	runBatch(mainCtx)
}
