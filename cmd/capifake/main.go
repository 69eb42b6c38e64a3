// Command capifake serves the in-memory fake of the Celery payroll API for
// local development of clients.
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

	"github.com/celerypayroll/capi/internal/capitest"
	"github.com/celerypayroll/capi/internal/common/logtrace"

	"github.com/rs/zerolog/log"
)

type cmdoptions struct {
	addr     string
	username string
	password string
	domains  string
	cors     string
	logLevel string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	opt := parseFlags()
	logtrace.InitLogger(opt.logLevel, true)
	slog := log.With().Str("state", "init").Logger()

	var opts []capitest.Option
	if origins := splitList(opt.cors); len(origins) > 0 {
		opts = append(opts, capitest.WithCORS(origins...))
	}
	api := capitest.New(opts...)
	api.AddUser(opt.username, opt.password)
	for _, d := range splitList(opt.domains) {
		token := api.AddAccount(capitest.Account{Name: d, Email: "info@" + d, Domain: d})
		slog.Info().Str("domain", d).Str("account", token).Msg("seeded account")
	}

	serverErrors, shutdownServer := createServer(ctx, opt.addr, api)

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutdown started")
		shutdownServer()
	}
	return nil
}

func createServer(ctx context.Context, addr string, h http.Handler) (chan error, func()) {
	slog := log.With().Str("state", "init").Logger()
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info().Str("addr", addr).Msg("fake api started")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := func() {
		// Give outstanding requests 5 seconds to complete and initiate the shutdown.
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}
	return serverErrors, shutdown
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.addr, "addr", "127.0.0.1:8089", "Address to listen on")
	flag.StringVar(&opt.username, "user", "user", "Username accepted by authenticate")
	flag.StringVar(&opt.password, "password", "secret", "Password accepted by authenticate")
	flag.StringVar(&opt.domains, "domains", "", "Comma separated domains registered at startup")
	flag.StringVar(&opt.cors, "cors", "", "Comma separated origins allowed to call the API from a browser")
	flag.StringVar(&opt.logLevel, "log-level", "info", "Log level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
