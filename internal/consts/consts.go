// Package consts defines application-wide constants.
package consts

import "time"

// CaptionSocketTimeout is the per-socket timeout for caption downloads,
// in seconds. Kept untyped for the extraction command builder.
const CaptionSocketTimeout = 5

// Caption fetch jitter bounds. The random delay before each caption
// network call desynchronizes repeated requests.
const (
	JitterMin = 100 * time.Millisecond
	JitterMax = 200 * time.Millisecond
)

// File names and patterns.
const (
	// ProgressFilename is the name of the progress file, local and remote.
	ProgressFilename = "progress.json"
	// ShardPrefix is the prefix of shard file names.
	ShardPrefix = "data_"
	// ShardSuffix is the extension of shard file names.
	ShardSuffix = ".json"
	// CookieSuffix filters credential files in the cookies directory.
	CookieSuffix = ".txt"
)
