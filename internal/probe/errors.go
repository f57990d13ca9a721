package probe

import (
	"errors"
	"strings"
)

// Process exit statuses. Both failure classes share a status today; the
// report text is what tells them apart.
const (
	ExitOK           = 0
	ExitConfig       = 1
	ExitConnectivity = 1
)

// ConfigurationError means a required value was absent. It is raised
// before any connection attempt.
type ConfigurationError struct {
	Missing []string // keys, in check order
	EnvFile string
}

func (e *ConfigurationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// ConnectivityError wraps whatever the store client returned. Its message
// is the client's, unchanged.
type ConnectivityError struct {
	Op  string // "open" or "query"
	Err error
}

func (e *ConnectivityError) Error() string { return e.Err.Error() }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitConnectivity
}
