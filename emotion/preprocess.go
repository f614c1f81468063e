package emotion

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Preprocess crops region out of img, converts it to greyscale and resizes it to
// InputSize x InputSize. Pixels are scaled to [0, 1] in row-major order, matching
// a [1, 1, InputSize, InputSize] tensor.
//
// Arguments:
//   - img: The full frame.
//   - region: The face area in img coordinates.
//
// Returns:
//   - []float32: InputSize*InputSize normalised intensities.
//   - error: An error if region does not overlap img.
func Preprocess(img image.Image, region image.Rectangle) ([]float32, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, errors.Errorf("region outside of image bounds %v", img.Bounds())
	}

	face := imaging.Grayscale(imaging.Crop(img, region))
	scaled := resize.Resize(InputSize, InputSize, face, resize.Bilinear)

	data := make([]float32, InputSize*InputSize)
	b := scaled.Bounds()
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			g := color.GrayModel.Convert(scaled.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			data[y*InputSize+x] = float32(g.Y) / 255.0
		}
	}

	return data, nil
}
