package dto

import "time"

type EntryInfo struct {
	Key       string
	LocalPath string
	SHA256    string
	ByteSize  int64
	CachedAt  time.Time
	ExpiresAt time.Time
}

type UsageOutput struct {
	TotalBytes int64
	FileCount  int
}

type SweepOutput struct {
	Removed int
}
