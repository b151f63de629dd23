package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"tailsv/internal/cli"
	"tailsv/internal/config"
	"tailsv/internal/event"
	"tailsv/internal/logging"
	"tailsv/internal/metrics"
	"tailsv/internal/render"
	"tailsv/internal/server"
	"tailsv/internal/tail"
	"tailsv/internal/watcher"
)

func runWatch(args []string, out io.Writer, errOut io.Writer) int {
	flags := flag.NewFlagSet("tailsv watch", flag.ContinueOnError)
	flags.SetOutput(errOut)
	delimiter := flags.String("d", "", "Field delimiter (character or name like tab)")
	configPath := flags.String("config", "", "Config file path")
	serveAddr := flags.String("serve", "", "Also stream rows to websocket clients on this address")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warning, error)")
	debounceMS := flags.Int("debounce-ms", 0, "Notification settle window in milliseconds")
	helpVersion := cli.AddHelpVersionFlags(flags)

	if err := flags.Parse(args); err != nil {
		return exitCodeError
	}
	if helpVersion.Help {
		flags.Usage()
		return exitCodeSuccess
	}
	if helpVersion.Version {
		return run([]string{"version"}, out, errOut)
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(errOut, "tailsv watch: exactly one file argument required")
		return exitCodeError
	}
	path := flags.Arg(0)

	cfg, err := config.Load(afero.NewOsFs(), *configPath)
	if err != nil {
		fmt.Fprintln(errOut, "tailsv watch:", err)
		return exitCodeError
	}
	cfg = cfg.ApplyEnv(nil)
	if *delimiter != "" {
		cfg.Delimiter = *delimiter
	}
	if *serveAddr != "" {
		cfg.ServeAddr = *serveAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *debounceMS > 0 {
		cfg.DebounceMS = *debounceMS
	}

	delimiterRune, err := cfg.DelimiterRune()
	if err != nil {
		fmt.Fprintln(errOut, "tailsv watch:", err)
		return exitCodeError
	}
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		fmt.Fprintf(errOut, "tailsv watch: invalid log level %q\n", cfg.LogLevel)
		return exitCodeError
	}
	logger := logging.NewLoggerWithOutput(level, errOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier, err := watcher.NewWithOptions(watcher.Options{
		Logger:   logger,
		Debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintln(errOut, "tailsv watch:", err)
		return exitCodeError
	}
	defer notifier.Close()

	sinks := []tail.Sink{render.NewTableSink(out, cfg.MaxColumnWidth)}

	var bus *event.Bus[server.Event]
	if cfg.ServeAddr != "" {
		bus = event.NewBus[server.Event](event.Options{})
		defer bus.Close()
		sinks = append(sinks, server.NewBusSink(bus))

		streamServer := server.New(cfg.ServeAddr, bus, logger)
		go func() {
			if err := streamServer.Run(ctx); err != nil {
				logger.Error("event stream server failed", map[string]string{
					"error": err.Error(),
				})
			}
		}()
	}

	session, err := tail.NewSession(tail.Options{
		Path:      path,
		Delimiter: delimiterRune,
		Watch:     notifier,
		Sink:      tail.Fanout(sinks...),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintln(errOut, "tailsv watch:", err)
		return exitCodeError
	}
	if err := session.Start(ctx); err != nil {
		fmt.Fprintln(errOut, "tailsv watch:", err)
		return exitCodeError
	}

	<-session.Done()
	logger.Info("watch finished", metrics.Default.Snapshot().Fields())

	if session.State() == tail.StateRemoved {
		return exitCodeNoMatch
	}
	return exitCodeSuccess
}
