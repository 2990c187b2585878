package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StrokeSegment is one straight line between two points.
// Coordinates are normalized to [0,1] against the sender's canvas; width is in pixels.
type StrokeSegment struct {
	X0    float64 `json:"x0" validate:"gte=0,lte=1"`
	Y0    float64 `json:"y0" validate:"gte=0,lte=1"`
	X1    float64 `json:"x1" validate:"gte=0,lte=1"`
	Y1    float64 `json:"y1" validate:"gte=0,lte=1"`
	Color string  `json:"color" validate:"required,max=64"`
	Width float64 `json:"width" validate:"gt=0"`
}

// Validate rejects segments that would be malformed on the wire or on replay.
func (s StrokeSegment) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStroke, err)
	}
	return nil
}
