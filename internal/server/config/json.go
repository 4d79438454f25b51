package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from "zero".
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	SigningAlgorithm            *string         `json:"signing_algorithm"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	OTPTokenValidityDuration    *timex.Duration `json:"otp_token_validity_duration"`
	OTPAlphabet                 *string         `json:"otp_alphabet"`
	OTPLength                   *int            `json:"otp_length"`
	OTPSender                   *string         `json:"otp_sender"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson loads the file named by -c / -config in args (if any) and copies
// the keys it contains into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setIfPresent(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIfPresent(&config.DatabaseDSN, c.DatabaseDSN)
	setIfPresent(&config.SecretKey, c.SecretKey)
	setIfPresent(&config.SigningAlgorithm, c.SigningAlgorithm)
	setIfPresent(&config.OTPAlphabet, c.OTPAlphabet)
	setIfPresent(&config.OTPLength, c.OTPLength)
	setIfPresent(&config.OTPSender, c.OTPSender)
	setIfPresent(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.OTPTokenValidityDuration != nil {
		config.OTPTokenValidityDuration = c.OTPTokenValidityDuration.Duration
	}

	return nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
