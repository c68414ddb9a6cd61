package store

import "time"

// Run is one invocation of a cleaning command.
type Run struct {
	ID             int64
	StartedAt      time.Time
	Command        string // "clean" or "sweep"
	FilesRemoved   int
	BytesReclaimed int64
}

// Deletion records one file or directory a run removed.
type Deletion struct {
	ID        int64
	RunID     int64
	Path      string
	Package   string // empty for sweeper removals
	Reason    string
	SizeBytes int64
	DeletedAt time.Time
}
