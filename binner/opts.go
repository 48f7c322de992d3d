package binner

// Opts controls table assembly.
type Opts struct {
	// Parallelism caps the number of simultaneous per-dataset aggregation
	// jobs.  0 means one job per CPU.
	Parallelism int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Parallelism: 0,
}
