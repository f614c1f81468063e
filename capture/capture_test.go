package capture

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type stubCamera struct {
	index  int
	closed bool
}

func (s *stubCamera) Read(dst *gocv.Mat) bool { return false }

func (s *stubCamera) Close() error {
	s.closed = true
	return nil
}

// opener returns an Opener that only succeeds for the given indices and records every attempt.
func opener(available map[int]bool, attempts *[]int) Opener {
	return func(index int) (Camera, error) {
		*attempts = append(*attempts, index)
		if !available[index] {
			return nil, errors.Errorf("device %d missing", index)
		}
		return &stubCamera{index: index}, nil
	}
}

func TestOpenPrefersFirstIndex(t *testing.T) {
	var attempts []int
	dev, err := Open(opener(map[int]bool{0: true, 1: true}, &attempts), 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, dev.Index)
	assert.Equal(t, []int{1}, attempts)
	assert.Equal(t, 1, dev.Camera.(*stubCamera).index)
}

func TestOpenFallsBack(t *testing.T) {
	var attempts []int
	dev, err := Open(opener(map[int]bool{0: true}, &attempts), 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, dev.Index)
	assert.Equal(t, []int{1, 0}, attempts)
}

func TestOpenNoCamera(t *testing.T) {
	var attempts []int
	dev, err := Open(opener(map[int]bool{}, &attempts), 1, 0)

	require.Error(t, err)
	assert.Nil(t, dev)
	assert.True(t, errors.Is(err, ErrNoCamera))
	assert.Contains(t, err.Error(), "device 0 missing")
	assert.Equal(t, []int{1, 0}, attempts)
}

func TestOpenWithoutIndices(t *testing.T) {
	_, err := Open(func(int) (Camera, error) {
		t.Fatal("opener must not be called")
		return nil, nil
	})
	assert.True(t, errors.Is(err, ErrNoCamera))
}
