package messages

import "time"

// PingResponse carries the server time the ping was handled at.
type PingResponse struct {
	Timestamp time.Time `json:"timestamp"`
}

type ScatterRequest struct {
	Seed        int64           `json:"seed"`
	Domain      DomainSpec      `json:"domain"`
	Probability ProbabilitySpec `json:"probability"`
	Count       int             `json:"count"`
	Tries       int             `json:"tries"`

	// The index built over the sampled points. Leaving it out skips the
	// index.
	Index *IndexSpec `json:"index,omitempty"`
}

// ScatterResponse holds the accepted points, which can be fewer than
// requested.
type ScatterResponse struct {
	Points    []Vec3 `json:"points"`
	Requested int    `json:"requested"`
	Indexed   bool   `json:"indexed"`
	IndexSize int    `json:"index_size,omitempty"`
	NodeCount int    `json:"node_count,omitempty"`
}

type ScatterQueryRequest struct {
	Center Vec3    `json:"center"`
	Radius float64 `json:"radius"`
}

// ScatterQueryResponse lists the indexed points inside the queried sphere
// along with their position in the last scatter response.
type ScatterQueryResponse struct {
	Points  []Vec3 `json:"points"`
	Indices []int  `json:"indices"`
}

// ForcesSpec overrides growth forces. Left out forces keep their defaults.
type ForcesSpec struct {
	Direction *ParamSpec    `json:"direction,omitempty"`
	Gravity   *ParamSpec    `json:"gravity,omitempty"`
	Turn      *VecParamSpec `json:"turn,omitempty"`
	Random    *ParamSpec    `json:"random,omitempty"`
	Twist     *ParamSpec    `json:"twist,omitempty"`
}

// BladeRequest grows and warps a batch of blades. Instances start at Starts,
// or at Count points sampled uniformly in Domain when Starts is empty.
type BladeRequest struct {
	Seed   int64       `json:"seed"`
	Starts []Vec3      `json:"starts,omitempty"`
	Domain *DomainSpec `json:"domain,omitempty"`
	Count  int         `json:"count,omitempty"`

	Height         float64    `json:"height"`
	HeightSegments int        `json:"height_segments"`
	WidthSegments  int        `json:"width_segments"`
	Gravity        *Vec3      `json:"gravity,omitempty"`
	StartDirection *Vec3      `json:"start_direction,omitempty"`
	Forces         ForcesSpec `json:"forces"`
	DirectionNoise *NoiseSpec `json:"direction_noise,omitempty"`
	TwistNoise     *NoiseSpec `json:"twist_noise,omitempty"`

	Width               float64     `json:"width"`
	Bend                float64     `json:"bend"`
	BendController      ProfileSpec `json:"bend_controller"`
	ThicknessController ProfileSpec `json:"thickness_controller"`
	WidthNoise          *NoiseSpec  `json:"width_noise,omitempty"`
	GlobalRight         *Vec3       `json:"global_right,omitempty"`
}

type BladeInstance struct {
	ID       string        `json:"id"`
	Index    int           `json:"index"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Skeleton []SegmentSpec `json:"skeleton,omitempty"`

	Positions []float32 `json:"positions,omitempty"`
	Normals   []float32 `json:"normals,omitempty"`
	Indices   []uint32  `json:"indices,omitempty"`
}

type BladeResponse struct {
	BatchID   string          `json:"batch_id"`
	Instances []BladeInstance `json:"instances"`
}
