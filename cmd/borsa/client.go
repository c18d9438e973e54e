package main

import (
	"github.com/goborsa/borsa"
	"github.com/goborsa/borsa/internal/logger"
)

// newClient builds a client from the global flags.
func newClient() (*borsa.Client, error) {
	opts := []borsa.Option{}
	if cfgFile != "" {
		opts = append(opts, borsa.WithConfigFile(cfgFile))
	}
	if debug {
		opts = append(opts, borsa.WithLogger(logger.Must(true)))
	}
	return borsa.NewClient(opts...)
}
