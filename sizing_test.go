package sketchkit

import (
	"errors"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestCalculateFilterSize(t *testing.T) {
	size, err := CalculateFilterSize(1000, 0.01)
	require.NoError(t, err)
	// -1000 * ln(0.01) / ln(2)^2 = 9585.06
	require.Equal(t, uint(9586), size)
	require.Equal(t, uint(7), CalculateNumHashes(size, 1000))
}

func TestCalculateFilterSizeInvalid(t *testing.T) {
	_, err := CalculateFilterSize(0, 0.01)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = CalculateFilterSize(10, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = CalculateFilterSize(10, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFalsePositiveRate(t *testing.T) {
	expected := math.Pow(1-math.Exp(-9.0/1000), 3)
	require.InDelta(t, expected, FalsePositiveRate(1000, 3, 3), 1e-12)
	require.Equal(t, 0.0, FalsePositiveRate(1000, 3, 0))
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(16)
	b := GenerateRandomString(16)
	require.Len(t, a, 16)
	require.NotEqual(t, a, b)
	for _, c := range a {
		require.Contains(t, letterBytes, string(c))
	}
}

func TestParseRedisURI(t *testing.T) {
	mr := miniredis.RunT(t)
	opts, err := ParseRedisURI("redis://" + mr.Addr() + "/2")
	require.NoError(t, err)
	require.Equal(t, mr.Addr(), opts.Address)
	require.Equal(t, 2, opts.DB)

	_, err = ParseRedisURI("http://" + mr.Addr())
	require.Error(t, err)

	client, err := NewRedisClientFromURI("redis://" + mr.Addr())
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Ping(t.Context()).Err())
}
