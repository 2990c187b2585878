package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validSegment() StrokeSegment {
	return StrokeSegment{X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "#000000", Width: 5}
}

func TestStrokeSegment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StrokeSegment)
		wantErr bool
	}{
		{name: "valid", mutate: func(*StrokeSegment) {}},
		{name: "corners are inclusive", mutate: func(s *StrokeSegment) { s.X0, s.Y0, s.X1, s.Y1 = 0, 0, 1, 1 }},
		{name: "negative x0", mutate: func(s *StrokeSegment) { s.X0 = -0.01 }, wantErr: true},
		{name: "y1 above one", mutate: func(s *StrokeSegment) { s.Y1 = 1.5 }, wantErr: true},
		{name: "nan coordinate", mutate: func(s *StrokeSegment) { s.X1 = math.NaN() }, wantErr: true},
		{name: "empty color", mutate: func(s *StrokeSegment) { s.Color = "" }, wantErr: true},
		{name: "oversized color", mutate: func(s *StrokeSegment) { s.Color = strings.Repeat("f", 65) }, wantErr: true},
		{name: "zero width", mutate: func(s *StrokeSegment) { s.Width = 0 }, wantErr: true},
		{name: "named color", mutate: func(s *StrokeSegment) { s.Color = "red" }},
		{name: "wide pen", mutate: func(s *StrokeSegment) { s.Width = 120 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := validSegment()
			tt.mutate(&seg)

			err := seg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStroke)
				return
			}
			require.NoError(t, err)
		})
	}
}
