/*
Package flightpath holds a number of application level constants and shared
resources for the flightpath application.
*/
package flightpath

import (
	"time"
)

const (
	ShortDateFormat = "2006-01-02T15:04"

	// QueueName is the prefix for the collections backing the remote
	// amboy queue.
	QueueName = "flightpath.service"

	// StatsCacheGeneration and StatsCacheExport name the in-memory stat
	// caches used to report rolled-up counts of background work.
	StatsCacheGeneration = "generation"
	StatsCacheExport     = "export"
)

// BuildRevision stores the commit in the git repository at build time and is
// specified with -ldflags at build time.
var BuildRevision = ""

const (
	AuthTokenCookie  = "flightpath-token"
	APIUserHeader    = "Api-User"
	APIKeyHeader     = "Api-Key"
	TokenExpireAfter = time.Hour
)
