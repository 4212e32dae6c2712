package hive

// openOptions collects the functional options accepted by Open/OpenWithLogs/
// FromBytes, the way the teacher's hive/builder and hive/merge packages
// configure construction through options.go rather than hard-coded constants.
type openOptions struct {
	maxCellSize    int
	maxSubkeyDepth int
}

// OpenOption configures a Hive at construction time.
type OpenOption func(*openOptions)

const (
	defaultMaxCellSize    = 64 << 20 // 64 MiB safeguard against hostile cell sizes
	defaultMaxSubkeyDepth = 512      // guards recursive subkey-list/tree walks against cycles
)

func defaultOpenOptions() openOptions {
	return openOptions{
		maxCellSize:    defaultMaxCellSize,
		maxSubkeyDepth: defaultMaxSubkeyDepth,
	}
}

// WithMaxCellSize overrides the largest cell this Hive will accept before
// treating the hive as corrupt. Guards against integer-overflow or
// resource-exhaustion attacks via a crafted cell-size header.
func WithMaxCellSize(n int) OpenOption {
	return func(o *openOptions) {
		if n > 0 {
			o.maxCellSize = n
		}
	}
}

// WithMaxSubkeyDepth overrides the recursion depth limit used when walking
// subkey trees, guarding against cyclic parent/subkey references in a
// corrupt or hostile hive (spec "Cyclic references" hardening).
func WithMaxSubkeyDepth(n int) OpenOption {
	return func(o *openOptions) {
		if n > 0 {
			o.maxSubkeyDepth = n
		}
	}
}
