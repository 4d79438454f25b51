package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN ("" for the in-memory store)
//	-s string   JWT HMAC secret key
//	-m string   JWT signing algorithm
//	-t int      access token validity, minutes
//	-o int      OTP challenge token validity, minutes
//	-x string   OTP alphabet
//	-l int      OTP length
//	-n string   OTP sender ("log" or "memory")
//	-v string   log level
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-m", "-t", "-o", "-x", "-l", "-n", "-v"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "m", config.SigningAlgorithm, "JWT signing algorithm")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	otpTokenValidity := fs.Int("o", int(config.OTPTokenValidityDuration.Minutes()), "otp token validity (in minutes)")

	fs.StringVar(&config.OTPAlphabet, "x", config.OTPAlphabet, "OTP alphabet")
	fs.IntVar(&config.OTPLength, "l", config.OTPLength, "OTP length")
	fs.StringVar(&config.OTPSender, "n", config.OTPSender, "OTP sender")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only touch durations that were given explicitly, so sub-minute values
	// from JSON or env survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "o":
			config.OTPTokenValidityDuration = time.Duration(*otpTokenValidity) * time.Minute
		}
	})

	return nil
}
