package messages

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"github.com/segmentio/encoding/json"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector encoded as [x, y, z].
type Vec3 [3]float64

func NewVec3(v r3.Vec) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func Vec3s(vs []r3.Vec) []Vec3 {
	res := make([]Vec3, len(vs))
	for i, v := range vs {
		res[i] = NewVec3(v)
	}
	return res
}

// DomainSpec describes a box (min, max) or a sphere (center, radius).
type DomainSpec struct {
	Type   string  `json:"type"`
	Min    Vec3    `json:"min"`
	Max    Vec3    `json:"max"`
	Center Vec3    `json:"center"`
	Radius float64 `json:"radius,omitempty"`
}

func (s DomainSpec) Domain() (models.Domain, error) {
	var d models.Domain
	var err error

	switch s.Type {
	case "box":
		d, err = models.NewBoxDomain(s.Min.R3(), s.Max.R3())
	case "sphere":
		d, err = models.NewSphereDomain(s.Center.R3(), s.Radius)
	default:
		return models.Domain{}, errors.New("unknown domain type").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("domain_type", s.Type)
	}
	if err != nil {
		return models.Domain{}, errors.New("invalid domain").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}
	return d, nil
}

// ProbabilitySpec describes a probability map:
//   - uniform: constant Value
//   - noise: noise remapped to [Min, Max] at Frequency, raised to Pow when set
//   - combined: A and B merged with Combiner (pow, mul, min or max)
type ProbabilitySpec struct {
	Type      string           `json:"type"`
	Value     float64          `json:"value,omitempty"`
	Frequency float64          `json:"frequency,omitempty"`
	Min       float64          `json:"min"`
	Max       float64          `json:"max"`
	Pow       *float64         `json:"pow,omitempty"`
	Combiner  string           `json:"combiner,omitempty"`
	A         *ProbabilitySpec `json:"a,omitempty"`
	B         *ProbabilitySpec `json:"b,omitempty"`
}

// NoiseSpec configures a noise field.
type NoiseSpec struct {
	Frequency float64 `json:"frequency"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// ParamSpec is either a constant or a linear taper from From at the root to
// To at the tip. A taper is used when both From and To are set.
type ParamSpec struct {
	Constant float64  `json:"constant,omitempty"`
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
}

func (s ParamSpec) Param() models.Param {
	if s.From != nil && s.To != nil {
		return models.Taper(*s.From, *s.To)
	}
	return models.Constant(s.Constant)
}

// Weights is a per-axis weight encoded as [x, y, z], or as a single number
// applied to every axis.
type Weights Vec3

func (w *Weights) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*w = Weights{v, v, v}
		return nil
	}

	var axes [3]float64
	if err := json.Unmarshal(b, &axes); err != nil {
		return errors.New("weights must be a number or [x, y, z]").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}
	*w = Weights(axes)
	return nil
}

func (w Weights) R3() r3.Vec {
	return Vec3(w).R3()
}

// VecParamSpec is the per-axis counterpart of ParamSpec.
type VecParamSpec struct {
	Constant Weights  `json:"constant"`
	From     *Weights `json:"from,omitempty"`
	To       *Weights `json:"to,omitempty"`
}

func (s VecParamSpec) VecParam() models.VecParam {
	if s.From != nil && s.To != nil {
		return models.TaperVec(s.From.R3(), s.To.R3())
	}
	return models.ConstantVec(s.Constant.R3())
}

// ProfileSpec names a profile function: constant (Value), linear, power
// (Exponent) or sine.
type ProfileSpec struct {
	Type     string  `json:"type"`
	Value    float64 `json:"value,omitempty"`
	Exponent float64 `json:"exponent,omitempty"`
}

func (s ProfileSpec) Profile() (models.Profile, error) {
	switch s.Type {
	case "constant":
		return models.ConstantProfile(s.Value), nil
	case "linear":
		return models.LinearProfile, nil
	case "power":
		return models.PowerProfile(s.Exponent), nil
	case "sine":
		return models.SineProfile, nil
	default:
		return nil, errors.New("unknown profile type").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("profile_type", s.Type)
	}
}

type IndexSpec struct {
	Capacity  int  `json:"capacity"`
	MaxDepth  int  `json:"max_depth"`
	PreDivide bool `json:"pre_divide,omitempty"`
}

type SegmentSpec struct {
	Position  Vec3    `json:"position"`
	Direction Vec3    `json:"direction"`
	Rotation  float64 `json:"rotation"`
}

func NewSegmentSpecs(s models.Skeleton) []SegmentSpec {
	res := make([]SegmentSpec, len(s))
	for i, seg := range s {
		res[i] = SegmentSpec{
			Position:  NewVec3(seg.Position),
			Direction: NewVec3(seg.Direction),
			Rotation:  seg.Rotation,
		}
	}
	return res
}
