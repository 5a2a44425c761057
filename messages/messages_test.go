package messages

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDecode(t *testing.T) {
	t.Run("scatter request", func(t *testing.T) {
		msg, err := Decode([]byte(`{
			"type": "scatter_request",
			"request_id": 7,
			"data": {
				"seed": 3,
				"domain": {"type": "sphere", "center": [1, 2, 3], "radius": 4},
				"probability": {"type": "uniform", "value": 1},
				"count": 10,
				"tries": 2
			}
		}`))
		require.NoError(t, err)
		require.Equal(t, MsgTypeScatterRequest, msg.Type)
		require.Equal(t, uint32(7), msg.RequestID)

		var req ScatterRequest
		require.NoError(t, msg.DataTo(&req))
		require.Equal(t, int64(3), req.Seed)
		require.Equal(t, Vec3{1, 2, 3}, req.Domain.Center)
		require.Nil(t, req.Index)

		d, err := req.Domain.Domain()
		require.NoError(t, err)
		require.Equal(t, models.DomainSphere, d.Kind)
		require.Equal(t, 4.0, d.Sphere.Radius)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Decode([]byte(`{"request_id": 1}`))
		require.Error(t, err)
		require.True(t, errors.IsType(err, models.ErrTypeMsgInvalid))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":`))
		require.Error(t, err)
		require.True(t, errors.IsType(err, models.ErrTypeMsgInvalid))
	})

	t.Run("malformed data", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type": "blade_request", "data": {"seed": "nope"}}`))
		require.NoError(t, err)

		var req BladeRequest
		err = msg.DataTo(&req)
		require.Error(t, err)
		require.True(t, errors.IsType(err, models.ErrTypeMsgInvalid))
	})
}

func TestNewMsgEncode(t *testing.T) {
	msg, err := NewMsg(MsgTypePingResponse, 12, nil)
	require.NoError(t, err)
	require.Empty(t, msg.Data)

	b, err := msg.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"type": "ping_response", "request_id": 12}`, string(b))

	msg, err = NewMsg(MsgTypeErrorResponse, 1, ErrorResponse{Code: "unknown_msg"})
	require.NoError(t, err)
	require.JSONEq(t, `{"code": "unknown_msg"}`, string(msg.Data))
}

func TestDomainSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    DomainSpec
		errType string
	}{
		{
			name: "box",
			spec: DomainSpec{Type: "box", Max: Vec3{1, 1, 1}},
		},
		{
			name:    "inverted box",
			spec:    DomainSpec{Type: "box", Min: Vec3{2, 0, 0}, Max: Vec3{1, 1, 1}},
			errType: models.ErrTypeMsgInvalid,
		},
		{
			name:    "flat sphere",
			spec:    DomainSpec{Type: "sphere"},
			errType: models.ErrTypeMsgInvalid,
		},
		{
			name:    "unknown",
			spec:    DomainSpec{Type: "torus"},
			errType: models.ErrTypeMsgInvalid,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.spec.Domain()
			if test.errType == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.IsType(err, test.errType))
		})
	}
}

func TestParamSpec(t *testing.T) {
	from, to := 2.0, 4.0

	constant := ParamSpec{Constant: 3}.Param()
	require.False(t, constant.IsFunc())
	require.Equal(t, 3.0, constant.At(0.7))

	taper := ParamSpec{From: &from, To: &to}.Param()
	require.True(t, taper.IsFunc())
	require.Equal(t, 3.0, taper.At(0.5))

	halfTaper := ParamSpec{Constant: 1, From: &from}.Param()
	require.False(t, halfTaper.IsFunc())
	require.Equal(t, 1.0, halfTaper.At(0.5))
}

func TestForcesSpecTurn(t *testing.T) {
	tests := []struct {
		name string
		data string
		at   float64
		turn r3.Vec
	}{
		{
			name: "scalar weights every axis",
			data: `{"forces": {"turn": {"constant": 0.5}}}`,
			turn: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5},
		},
		{
			name: "per axis weights",
			data: `{"forces": {"turn": {"constant": [0.5, 0, 0.5]}}}`,
			turn: r3.Vec{X: 0.5, Z: 0.5},
		},
		{
			name: "taper between axis weights",
			data: `{"forces": {"turn": {"from": [1, 0, 1], "to": 0}}}`,
			at:   0.5,
			turn: r3.Vec{X: 0.5, Z: 0.5},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := Msg{Type: MsgTypeBladeRequest, Data: []byte(test.data)}

			var req BladeRequest
			require.NoError(t, msg.DataTo(&req))
			require.NotNil(t, req.Forces.Turn)
			require.Nil(t, req.Forces.Direction)
			require.Equal(t, test.turn, req.Forces.Turn.VecParam().At(test.at))
		})
	}

	t.Run("invalid weights", func(t *testing.T) {
		msg := Msg{Type: MsgTypeBladeRequest, Data: []byte(`{"forces": {"turn": {"constant": "left"}}}`)}

		var req BladeRequest
		err := msg.DataTo(&req)
		require.Error(t, err)
		require.True(t, errors.IsType(err, models.ErrTypeMsgInvalid))
	})
}

func TestProfileSpec(t *testing.T) {
	for _, name := range []string{"constant", "linear", "power", "sine"} {
		p, err := ProfileSpec{Type: name, Value: 1, Exponent: 2}.Profile()
		require.NoError(t, err)
		require.NotNil(t, p)
	}

	p, err := ProfileSpec{Type: "power", Exponent: 2}.Profile()
	require.NoError(t, err)
	require.InDelta(t, 0.25, p(0.5), 1e-12)

	_, err = ProfileSpec{Type: "zigzag"}.Profile()
	require.Error(t, err)
	require.True(t, errors.IsType(err, models.ErrTypeMsgInvalid))
}

func TestVec3s(t *testing.T) {
	require.Equal(t, []Vec3{{1, 2, 3}}, Vec3s([]r3.Vec{{X: 1, Y: 2, Z: 3}}))
	require.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, Vec3{1, 2, 3}.R3())
}
