package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	t.Run("Same Point", func(t *testing.T) {
		d, err := Distance(40.0, -73.0, 40.0, -73.0)
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("One Degree Of Latitude", func(t *testing.T) {
		d, err := Distance(40.0, -73.0, 41.0, -73.0)
		require.NoError(t, err)
		assert.InDelta(t, 111195, d, 1)
	})

	t.Run("Three Kilometers North", func(t *testing.T) {
		// 3000 m / 111195 m per degree
		d, err := Distance(40.0, -73.0, 40.02698, -73.0)
		require.NoError(t, err)
		assert.InDelta(t, 3000, d, 2)
	})

	t.Run("Symmetric", func(t *testing.T) {
		ab, err := Distance(6.9271, 79.8612, 7.2906, 80.6337)
		require.NoError(t, err)
		ba, err := Distance(7.2906, 80.6337, 6.9271, 79.8612)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-6)
	})

	t.Run("Invalid Latitude", func(t *testing.T) {
		_, err := Distance(95, 0, 0, 0)
		assert.True(t, errors.Is(err, ErrInvalidLatitude))
	})

	t.Run("Invalid Longitude", func(t *testing.T) {
		_, err := Distance(0, 0, 0, -181)
		assert.True(t, errors.Is(err, ErrInvalidLongitude))
	})
}

func TestNewPoint(t *testing.T) {
	p, err := NewPoint(40.5, -73.25)
	require.NoError(t, err)
	assert.Equal(t, -73.25, p.X())
	assert.Equal(t, 40.5, p.Y())
}
