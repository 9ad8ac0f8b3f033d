package constants

import "time"

// Database Timeouts
const (
	// DBHealthCheckTimeout bounds the ping and test query of a health check.
	DBHealthCheckTimeout = 5 * time.Second
)
