package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCascadeMissingFile(t *testing.T) {
	c, err := NewCascade(Config{Path: "does-not-exist.xml", ScaleFactor: 1.1, MinNeighbors: 4})
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNewCascadeRejectsScaleFactor(t *testing.T) {
	_, err := NewCascade(Config{Path: "does-not-exist.xml", ScaleFactor: 1.0})
	assert.ErrorContains(t, err, "scale factor")
}

func TestLargest(t *testing.T) {
	_, ok := Largest(nil)
	assert.False(t, ok)

	small := image.Rect(0, 0, 10, 10)
	big := image.Rect(50, 50, 90, 100)
	wide := image.Rect(0, 0, 60, 5)

	r, ok := Largest([]image.Rectangle{small, big, wide})
	assert.True(t, ok)
	assert.Equal(t, big, r)
}
