package config

// RunOptions are the per-run flags consumed, not owned, by the bake core.
type RunOptions struct {
	// Smart enables timestamp-based skip of unchanged documents.
	Smart bool
	// CleanCache forces a full purge before the run.
	CleanCache bool
	// InfoOnly reports paths and exits before any state mutation.
	InfoOnly bool
	// Variant names a configuration overlay applied before the run.
	Variant string
	// CopyAssets runs the asset pass after the bake phases.
	CopyAssets bool
	// Minify compresses rendered HTML and copied css/js assets.
	Minify bool
	// TagCombinations are extra "/"-joined composite keys for this run,
	// merged with the configured ones.
	TagCombinations []string
	// SkipPatterns and ForcePatterns are passed through to the asset pass.
	SkipPatterns  []string
	ForcePatterns []string
}

// DefaultRunOptions returns the options for a plain incremental build.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Smart:      true,
		CopyAssets: true,
		Minify:     true,
	}
}
