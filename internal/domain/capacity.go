package domain

import "math"

// DynamicMinCapacity is the capacity floor applied once a class is double-staffed
const (
	DynamicMinCapacity       = 5.0
	DynamicMinInstructorsMin = 2
)

// CapacityEnrollment is the only enrollment data the capacity rule looks at
type CapacityEnrollment struct {
	ClassRatio *string `json:"classRatio,omitempty"`
}

// CapacityResult is the seat accounting of one class
type CapacityResult struct {
	Filled            float64 `json:"filled"`
	EffectiveCapacity float64 `json:"effectiveCapacity"`
	OpenSeats         int     `json:"openSeats"`
}

// HasRoomFor reports whether an extra enrollment of the given ratio still fits
func (r CapacityResult) HasRoomFor(ratio ClassRatio) bool {
	return r.Filled+ratio.SeatWeight() <= r.EffectiveCapacity
}

// ComputeUsage computes the weighted seat usage of a class.
//
// Every enrollment contributes the seat weight of its ratio (missing ratios count as 3:1).
// When two or more instructors are assigned the capacity is raised to at least
// DynamicMinCapacity. Open seats are floored and then clamped at zero.
func ComputeUsage(enrollments []CapacityEnrollment, instructorCount int, baseCapacity float64) CapacityResult {
	filled := 0.0
	for _, e := range enrollments {
		filled += RatioFromPtr(e.ClassRatio).SeatWeight()
	}

	dynamicMin := 0.0
	if instructorCount >= DynamicMinInstructorsMin {
		dynamicMin = DynamicMinCapacity
	}
	effective := math.Max(baseCapacity, dynamicMin)

	open := math.Floor(effective - filled)
	if open < 0 {
		open = 0
	}

	return CapacityResult{
		Filled:            filled,
		EffectiveCapacity: effective,
		OpenSeats:         int(open),
	}
}

// ComputeUsageForRatios is a convenience wrapper for callers that only hold ratio strings
func ComputeUsageForRatios(ratios []string, instructorCount int, baseCapacity float64) CapacityResult {
	enrollments := make([]CapacityEnrollment, len(ratios))
	for i := range ratios {
		r := ratios[i]
		enrollments[i] = CapacityEnrollment{ClassRatio: &r}
	}
	return ComputeUsage(enrollments, instructorCount, baseCapacity)
}
