package featureflag

type Flag string

const (
	// Blade meshes are returned with their pristine normals.
	FlagDisableNormalRecompute Flag = "DISABLE_NORMAL_RECOMPUTE"

	// Scatter requests return sampled points without building a spatial
	// index, which also disables scatter queries.
	FlagDisableScatterIndex Flag = "DISABLE_SCATTER_INDEX"

	// Scatter indexes always pre-divide, whatever the request asks.
	FlagForcePreDivide Flag = "FORCE_PREDIVIDE"
)
