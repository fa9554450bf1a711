package model

const (
	// DefaultTrimWindow is the number of tags kept per action
	DefaultTrimWindow = 10

	// DefaultSizeWarnChars approximates the 64KB UTF-16 limit of a single
	// storage property in the catalog
	DefaultSizeWarnChars = 32000
)

// SyncPolicy holds the tunables of a sync run
type SyncPolicy struct {
	// MaxUploads caps successful uploads per run. Zero or less means no cap.
	MaxUploads int

	TrimWindow    int
	SizeWarnChars int
}

// DefaultSyncPolicy returns the policy used when nothing is configured
func DefaultSyncPolicy() SyncPolicy {
	return SyncPolicy{
		TrimWindow:    DefaultTrimWindow,
		SizeWarnChars: DefaultSizeWarnChars,
	}
}
