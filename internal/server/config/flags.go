package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-s string   session token HMAC secret
//	-t int      session idle TTL, minutes
//	-m int      max encoded image size, bytes
//	-x int      max image long edge, pixels
//	-q int      initial JPEG quality (1-100)
//	-p int      max source image pixels (width*height)
//	-b int      request body limit, bytes
//	-l string   log level
//
// os.Args is filtered through flagx.FilterArgs first, so the -c/-config flag
// handled by parseFile does not trip this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-t", "-m", "-x", "-q", "-p", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session idle TTL (in minutes)")

	fs.IntVar(&config.ImageMaxBytes, "m", config.ImageMaxBytes, "max encoded image size in bytes")
	fs.IntVar(&config.ImageMaxDimension, "x", config.ImageMaxDimension, "max image long edge in pixels")
	fs.IntVar(&config.ImageQuality, "q", config.ImageQuality, "initial JPEG quality")
	fs.IntVar(&config.ImageMaxPixels, "p", config.ImageMaxPixels, "max source image pixels")
	fs.IntVar(&config.BodyLimit, "b", config.BodyLimit, "request body limit in bytes")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -t overrides the TTL; the minute granularity of the flag
	// would otherwise truncate a sub-minute value coming from the config file.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}
