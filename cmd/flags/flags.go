// Package flags holds the CLI flags shared by the gateway binaries.
package flags

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/ruteri/ipfs-vhost-gateway/common"
	"github.com/urfave/cli/v2"
)

var ConfigFileFlag = &cli.StringFlag{
	Name:  "config",
	Value: "",
	Usage: "path to a config file; flags override its values",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address the proxy and control API listen on",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics (empty to disable)",
}

var GatewayURLFlag = &cli.StringFlag{
	Name:  "gateway-url",
	Value: "http://127.0.0.1:8081",
	Usage: "downstream content gateway base address; a DNS hostname enables subdomain addressing",
}

var IPFSAPIAddrFlag = &cli.StringFlag{
	Name:  "ipfs-api-addr",
	Value: "127.0.0.1:5001",
	Usage: "IPFS node HTTP API address",
}

var IPNSKeyFlag = &cli.StringFlag{
	Name:  "ipns-key",
	Value: "self",
	Usage: "name of the IPNS key the vhost record is signed with",
}

var PublishedNameFlag = &cli.StringFlag{
	Name:  "published-name",
	Value: "",
	Usage: "IPNS name the vhost record is fetched under",
}

var RefreshIntervalFlag = &cli.DurationFlag{
	Name:  "refresh-interval",
	Value: 0,
	Usage: "background mapping refresh period (default 10s)",
}

var TLSCertFlag = &cli.StringFlag{
	Name:  "tls-cert",
	Value: "",
	Usage: "TLS certificate file; TLS is enabled when both cert and key are set",
}

var TLSKeyFlag = &cli.StringFlag{
	Name:  "tls-key",
	Value: "",
	Usage: "TLS key file",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
}

// SetupLogger builds the process logger from the common log flags.
func SetupLogger(cCtx *cli.Context, debug bool) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   debug || cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJSONFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUIDFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}
