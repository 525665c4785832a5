package domain

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RosterSession is the session summary attached to a roster
type RosterSession struct {
	ID              int64     `json:"id"`
	OfferingID      string    `json:"offeringId"`
	OfferingTitle   *string   `json:"offeringTitle,omitempty"`
	OfferingNotes   *string   `json:"offeringNotes,omitempty"`
	StartsAt        time.Time `json:"startsAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location,omitempty"`
	Instructors     []string  `json:"instructors"`
}

// RosterEntry is one enrolled swimmer on a roster
type RosterEntry struct {
	EnrollmentID int64      `json:"enrollmentId"`
	SwimmerID    int64      `json:"swimmerId"`
	SwimmerName  string     `json:"swimmerName"`
	ClassRatio   ClassRatio `json:"classRatio"`
	Skipped      bool       `json:"skipped"`
}

// RosterResponse is the roster of a single scheduled session
type RosterResponse struct {
	Session     RosterSession   `json:"session"`
	Enrollments []RosterEntry   `json:"enrollments"`
	Usage       *CapacityResult `json:"usage,omitempty"`
}

// RosterDay groups the rosters of one calendar day
type RosterDay struct {
	Date    string           `json:"date" example:"2026-10-18"`
	Rosters []RosterResponse `json:"rosters"`
}

// SlotPage is a page of rosters laid out by day
type SlotPage struct {
	Days []RosterDay `json:"days"`
}

// OfferingGroup holds all rosters of one offering
type OfferingGroup struct {
	OfferingKey string           `json:"offeringKey"`
	Title       string           `json:"title"`
	Notes       string           `json:"notes"`
	Rosters     []RosterResponse `json:"rosters"`
}

// titleCollation pins the collation used to order offering titles
var titleCollation = language.English

// GroupByOffering regroups a day-ordered slot page by offering.
// Title and notes come from the first roster seen for an offering; the result is sorted
// by title using English case-insensitive collation, keeping encounter order on ties.
func GroupByOffering(page SlotPage) []OfferingGroup {
	index := make(map[string]int)
	groups := make([]OfferingGroup, 0)

	for _, day := range page.Days {
		for _, roster := range day.Rosters {
			key := roster.Session.OfferingID
			i, ok := index[key]
			if !ok {
				groups = append(groups, OfferingGroup{
					OfferingKey: key,
					Title:       offeringTitle(roster.Session),
					Notes:       derefOr(roster.Session.OfferingNotes, ""),
					Rosters:     []RosterResponse{},
				})
				i = len(groups) - 1
				index[key] = i
			}
			groups[i].Rosters = append(groups[i].Rosters, roster)
		}
	}

	// collators keep internal buffers, so one per call
	c := collate.New(titleCollation, collate.IgnoreCase)
	sort.SliceStable(groups, func(a, b int) bool {
		return c.CompareString(groups[a].Title, groups[b].Title) < 0
	})

	return groups
}

func offeringTitle(s RosterSession) string {
	if s.OfferingTitle != nil {
		return *s.OfferingTitle
	}
	return "Offering " + s.OfferingID
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
