package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// RotateClockwise rotates a frame by 90° clockwise.
//
// The rotation is a transpose followed by a horizontal flip, which is the
// compensation a portrait-held phone camera needs: the sensor delivers
// landscape rows. The result is a new image; frame is not modified.
func RotateClockwise(frame *image.Gray) *image.Gray {
	return ToGray(imaging.FlipH(imaging.Transpose(frame)))
}
