package models

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewBoxDomain(t *testing.T) {
	d, err := NewBoxDomain(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	require.Equal(t, DomainBox, d.Kind)
	require.Equal(t, "box", d.Kind.String())
	require.True(t, d.Contains(r3.Vec{}))
	require.True(t, d.Contains(r3.Vec{X: 1, Y: -1, Z: 1}))
	require.False(t, d.Contains(r3.Vec{X: 1.01}))

	_, err = NewBoxDomain(r3.Vec{X: 1}, r3.Vec{})
	require.True(t, errors.IsType(err, ErrTypeConfiguration))

	flat, err := NewBoxDomain(r3.Vec{}, r3.Vec{X: 1, Z: 1})
	require.NoError(t, err)
	require.True(t, flat.Contains(r3.Vec{X: 0.5, Z: 0.5}))
}

func TestNewSphereDomain(t *testing.T) {
	d, err := NewSphereDomain(r3.Vec{X: 1}, 2)
	require.NoError(t, err)
	require.Equal(t, DomainSphere, d.Kind)
	require.Equal(t, "sphere", d.Kind.String())
	require.True(t, d.Contains(r3.Vec{X: 3}))
	require.False(t, d.Contains(r3.Vec{X: -1.5}))

	for _, radius := range []float64{0, -1} {
		_, err := NewSphereDomain(r3.Vec{}, radius)
		require.True(t, errors.IsType(err, ErrTypeConfiguration))
	}
}

func TestDomainBounds(t *testing.T) {
	t.Run("sphere", func(t *testing.T) {
		d, err := NewSphereDomain(r3.Vec{X: 1, Y: 2, Z: 3}, 2)
		require.NoError(t, err)

		v, err := d.Bounds()
		require.NoError(t, err)
		require.Equal(t, r3.Vec{X: -1, Y: 0, Z: 1}, v.Min)
		require.Equal(t, r3.Vec{X: 3, Y: 4, Z: 5}, v.Max)
	})

	t.Run("box", func(t *testing.T) {
		d, err := NewBoxDomain(r3.Vec{X: -1}, r3.Vec{X: 1, Y: 2, Z: 3})
		require.NoError(t, err)

		v, err := d.Bounds()
		require.NoError(t, err)
		require.Equal(t, d.Box.Min, v.Min)
		require.Equal(t, d.Box.Max, v.Max)
	})

	t.Run("flat box", func(t *testing.T) {
		d, err := NewBoxDomain(r3.Vec{}, r3.Vec{X: 1, Z: 1})
		require.NoError(t, err)

		_, err = d.Bounds()
		require.True(t, errors.IsType(err, ErrTypeConfiguration))
	})
}

func TestDomainKindString(t *testing.T) {
	require.Equal(t, "unknown", DomainKind(42).String())
}
