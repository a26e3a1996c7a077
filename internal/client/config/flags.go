package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the gRPC server
//	-t int      per-call timeout in seconds
//	-m int      max request size in bytes
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("t", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")
	fs.IntVar(&cfg.MaxMessageSize, "m", cfg.MaxMessageSize, "max request size (in bytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CallTimeout = time.Duration(*timeout) * time.Second
}
