package session

import "path/filepath"

const (
	// DefaultBootstrapPath is the process-wide endpoint used only to launch
	// sessions and obtain session ids.
	DefaultBootstrapPath = "/tmp/zilean_backtest.ipc"

	// DefaultEndpointDir is where per-session endpoints live.
	DefaultEndpointDir = "/tmp/zilean_backtest"
)

// EndpointPath derives the per-session endpoint from the id returned at
// launch. The derivation is deterministic: the server binds the same path.
func EndpointPath(dir, backtestID string) string {
	if dir == "" {
		dir = DefaultEndpointDir
	}
	return filepath.Join(dir, backtestID+".ipc")
}
