package domain

// ClassRatio is the instructor-to-swimmer ratio an enrollment was sold at
type ClassRatio string

// Known class ratios
const (
	RatioPrivate ClassRatio = "1:1" // Private lesson
	RatioSemi    ClassRatio = "2:1" // Semi-private lesson
	RatioGroup   ClassRatio = "3:1" // Standard group lesson
	DefaultRatio            = RatioGroup
)

// seatWeights maps a ratio to the number of seats it consumes in a class
var seatWeights = map[ClassRatio]float64{
	RatioPrivate: 3.0,
	RatioSemi:    1.5,
	RatioGroup:   1.0,
}

// KnownRatios lists the ratios accepted by request validation
func KnownRatios() []ClassRatio {
	return []ClassRatio{RatioPrivate, RatioSemi, RatioGroup}
}

// IsKnown reports whether r is one of the priced ratios
func (r ClassRatio) IsKnown() bool {
	_, ok := seatWeights[r]
	return ok
}

// Normalize returns the ratio, or DefaultRatio when it is empty
func (r ClassRatio) Normalize() ClassRatio {
	if r == "" {
		return DefaultRatio
	}
	return r
}

// SeatWeight returns how many seats an enrollment of this ratio occupies.
// Unknown ratios count as a single seat.
func (r ClassRatio) SeatWeight() float64 {
	if w, ok := seatWeights[r.Normalize()]; ok {
		return w
	}
	return 1.0
}

// RatioFromPtr converts a nullable ratio column into a ClassRatio
func RatioFromPtr(s *string) ClassRatio {
	if s == nil {
		return ""
	}
	return ClassRatio(*s)
}
