// Package providers contains dependency injection providers for the Markhaven server.
package providers

import "time"

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second
