package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ruteri/ipfs-vhost-gateway/cmd/flags"
	"github.com/ruteri/ipfs-vhost-gateway/config"
	"github.com/ruteri/ipfs-vhost-gateway/httpserver"
	"github.com/ruteri/ipfs-vhost-gateway/proxy"
	"github.com/ruteri/ipfs-vhost-gateway/registry"
	"github.com/ruteri/ipfs-vhost-gateway/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vhost-gateway",
		Usage: "Reverse proxy mapping vhost names to IPFS content",
		Flags: append([]cli.Flag{
			flags.ConfigFileFlag,
			flags.ListenAddrFlag,
			flags.MetricsAddrFlag,
			flags.GatewayURLFlag,
			flags.IPFSAPIAddrFlag,
			flags.IPNSKeyFlag,
			flags.PublishedNameFlag,
			flags.RefreshIntervalFlag,
			flags.TLSCertFlag,
			flags.TLSKeyFlag,
			flags.PprofFlag,
			flags.DrainSecondsFlag,
		}, flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig merges the optional config file with flag overrides.
func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cCtx.String(flags.ConfigFileFlag.Name))
	if err != nil {
		return nil, err
	}

	if cCtx.IsSet(flags.ListenAddrFlag.Name) {
		cfg.ListenAddr = cCtx.String(flags.ListenAddrFlag.Name)
	}
	if cCtx.IsSet(flags.MetricsAddrFlag.Name) {
		cfg.MetricsAddr = cCtx.String(flags.MetricsAddrFlag.Name)
	}
	if cCtx.IsSet(flags.GatewayURLFlag.Name) {
		cfg.GatewayURL = cCtx.String(flags.GatewayURLFlag.Name)
	}
	if cCtx.IsSet(flags.IPFSAPIAddrFlag.Name) {
		cfg.IPFSAPIAddr = cCtx.String(flags.IPFSAPIAddrFlag.Name)
	}
	if cCtx.IsSet(flags.IPNSKeyFlag.Name) {
		cfg.IPNSKeyName = cCtx.String(flags.IPNSKeyFlag.Name)
	}
	if cCtx.IsSet(flags.PublishedNameFlag.Name) {
		cfg.PublishedName = cCtx.String(flags.PublishedNameFlag.Name)
	}
	if cCtx.IsSet(flags.RefreshIntervalFlag.Name) {
		cfg.RefreshInterval = cCtx.Duration(flags.RefreshIntervalFlag.Name)
	}
	if cCtx.IsSet(flags.TLSCertFlag.Name) || cCtx.IsSet(flags.TLSKeyFlag.Name) {
		cfg.TLSCertFile = cCtx.String(flags.TLSCertFlag.Name)
		cfg.TLSKeyFile = cCtx.String(flags.TLSKeyFlag.Name)
		cfg.EnableTLS = cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	}
	if cCtx.Bool(flags.PprofFlag.Name) {
		cfg.EnablePprof = true
	}

	return cfg, nil
}

func run(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := flags.SetupLogger(cCtx, cfg.LogDebug)

	client := storage.NewIPFSClient(cfg.IPFSAPIAddr, logger)

	// Wait for the IPFS node to come up; steady-state has no retries, only
	// the periodic refresh.
	logger.Info("Waiting for IPFS node", "api", cfg.IPFSAPIAddr)
	err = backoff.Retry(func() error {
		if !client.Available(cCtx.Context) {
			return errors.New("ipfs node not reachable")
		}
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8))
	if err != nil {
		logger.Error("IPFS node did not become available", "api", cfg.IPFSAPIAddr)
		return err
	}

	reg, err := registry.New(registry.Config{
		Client:          client,
		PublishedName:   cfg.PublishedName,
		KeyName:         cfg.IPNSKeyName,
		RecordLifetime:  cfg.RecordLifetime,
		RefreshInterval: cfg.RefreshInterval,
		Log:             logger,
	})
	if err != nil {
		return err
	}

	// Initial snapshot: a missing or unreadable record is not fatal, the
	// gateway starts with an empty mapping and retries on the next tick.
	if err := reg.Refresh(cCtx.Context); err != nil {
		logger.Warn("Initial mapping refresh failed, starting empty", "err", err)
	}
	reg.RunInBackground()

	rewriter, err := proxy.NewRewriter(cfg.GatewayURL)
	if err != nil {
		return err
	}
	logger.Info("Gateway configured",
		"gateway", cfg.GatewayURL,
		"subdomainAddressing", rewriter.SupportsSubdomains())

	forwarder := proxy.NewForwarder(rewriter, reg, logger)
	handler := httpserver.NewHandler(reg, logger)

	serverCfg := &httpserver.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              cfg.EnablePprof,
		Log:                      logger,
		DrainDuration:            time.Duration(cCtx.Int64(flags.DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
	if cfg.EnableTLS {
		serverCfg.TLSCertFile = cfg.TLSCertFile
		serverCfg.TLSKeyFile = cfg.TLSKeyFile
	}

	server, err := httpserver.New(serverCfg, handler, forwarder)
	if err != nil {
		return err
	}
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Gateway is running", "listenAddr", cfg.ListenAddr)
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	reg.Stop()
	logger.Info("Shutdown complete")

	return nil
}
