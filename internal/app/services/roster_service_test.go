package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

func rosterFixture(t *testing.T) (*fixture, *models.Session, *models.Session, *models.Session) {
	t.Helper()
	f := newFixture()
	beginner := f.offerings.add(&models.Offering{Title: "Beginner Swim", Notes: helpers.Ptr("bring goggles"), DefaultClassRatio: "3:1", BaseCapacity: 4})
	advanced := f.offerings.add(&models.Offering{Title: "advanced swim", DefaultClassRatio: "2:1", BaseCapacity: 3})
	coach := f.instructors.add("Marta", "Kaya")

	day1Early := f.sessions.add(beginner.ID, time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC), nil, coach.ID)
	day1Late := f.sessions.add(advanced.ID, time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC), nil)
	day2 := f.sessions.add(beginner.ID, time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC), nil)

	ada := f.swimmers.add("Ada", "Yilmaz")
	bob := f.swimmers.add("Bob", "Kaya")
	f.enrollments.add(day1Early.ID, ada.ID, "1:1")
	f.enrollments.add(day1Early.ID, bob.ID, "")
	skipped := f.enrollments.add(day2.ID, ada.ID, "3:1")
	require.NoError(t, f.enrollments.CreateSkip(context.Background(), &models.EnrollmentSkip{
		EnrollmentID: skipped.ID,
		SkipDate:     time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
	}))
	return f, day1Early, day1Late, day2
}

func TestGetSlotPage_GroupsSessionsByDay(t *testing.T) {
	f, early, late, day2 := rosterFixture(t)

	page, err := f.rosterService().GetSlotPage(context.Background(), nil, nil, 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Days, 2)
	assert.Equal(t, "2025-06-07", page.Days[0].Date)
	assert.Equal(t, "2025-06-08", page.Days[1].Date)
	require.Len(t, page.Days[0].Rosters, 2)
	assert.Equal(t, early.ID, page.Days[0].Rosters[0].Session.ID)
	assert.Equal(t, late.ID, page.Days[0].Rosters[1].Session.ID)
	assert.Equal(t, day2.ID, page.Days[1].Rosters[0].Session.ID)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)

	first := page.Days[0].Rosters[0]
	assert.Equal(t, "1", first.Session.OfferingID)
	assert.Equal(t, "Beginner Swim", *first.Session.OfferingTitle)
	assert.Equal(t, "bring goggles", *first.Session.OfferingNotes)
	assert.Equal(t, []string{"Marta Kaya"}, first.Session.Instructors)
	require.Len(t, first.Enrollments, 2)
	assert.Equal(t, "Ada Yilmaz", first.Enrollments[0].SwimmerName)
	assert.Equal(t, domain.RatioPrivate, first.Enrollments[0].ClassRatio)
	assert.Equal(t, domain.RatioGroup, first.Enrollments[1].ClassRatio)
	require.NotNil(t, first.Usage)
	assert.Equal(t, domain.CapacityResult{Filled: 4, EffectiveCapacity: 4, OpenSeats: 0}, *first.Usage)

	skipped := page.Days[1].Rosters[0].Enrollments
	require.Len(t, skipped, 1)
	assert.True(t, skipped[0].Skipped)
}

func TestGetSlotPage_DayBoundaryFollowsLocation(t *testing.T) {
	f := newFixture()
	o := f.offering("Evening", 4, "3:1")
	f.sessions.add(o.ID, time.Date(2025, 6, 7, 22, 30, 0, 0, time.UTC), nil)

	istanbul := time.FixedZone("TRT", 3*3600)
	page, err := NewRosterService(f.sessions, f.enrollments, istanbul, testLogger).GetSlotPage(context.Background(), nil, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Days, 1)
	assert.Equal(t, "2025-06-08", page.Days[0].Date)
}

func TestGetSlotPage_SkipMatchesLocalDay(t *testing.T) {
	f := newFixture()
	o := f.offering("Evening", 4, "3:1")
	sess := f.sessions.add(o.ID, time.Date(2025, 6, 7, 22, 30, 0, 0, time.UTC), nil)
	ada := f.swimmers.add("Ada", "Yilmaz")
	bob := f.swimmers.add("Bob", "Kaya")
	adaEnrollment := f.enrollments.add(sess.ID, ada.ID, "3:1")
	bobEnrollment := f.enrollments.add(sess.ID, bob.ID, "3:1")

	ctx := context.Background()
	require.NoError(t, f.enrollments.CreateSkip(ctx, &models.EnrollmentSkip{
		EnrollmentID: adaEnrollment.ID,
		SkipDate:     time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, f.enrollments.CreateSkip(ctx, &models.EnrollmentSkip{
		EnrollmentID: bobEnrollment.ID,
		SkipDate:     time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
	}))

	istanbul := time.FixedZone("TRT", 3*3600)
	page, err := NewRosterService(f.sessions, f.enrollments, istanbul, testLogger).GetSlotPage(ctx, nil, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Days, 1)
	assert.Equal(t, "2025-06-08", page.Days[0].Date)

	skipped := map[string]bool{}
	for _, e := range page.Days[0].Rosters[0].Enrollments {
		skipped[e.SwimmerName] = e.Skipped
	}
	assert.True(t, skipped["Ada Yilmaz"])
	assert.False(t, skipped["Bob Kaya"])
}

func TestGetSlotPage_RangeAndEmpty(t *testing.T) {
	f, _, _, day2 := rosterFixture(t)
	from, to, err := helpers.ParseDateRange("2025-06-08", "2025-06-08")
	require.NoError(t, err)

	page, err := f.rosterService().GetSlotPage(context.Background(), from, to, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Days, 1)
	assert.Equal(t, day2.ID, page.Days[0].Rosters[0].Session.ID)

	from, to, err = helpers.ParseDateRange("2025-07-01", "2025-07-02")
	require.NoError(t, err)
	empty, err := f.rosterService().GetSlotPage(context.Background(), from, to, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Days)
	assert.Empty(t, empty.Days)
}

func TestRosterGroupByOffering(t *testing.T) {
	f, early, late, day2 := rosterFixture(t)

	groups, err := f.rosterService().GroupByOffering(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "advanced swim", groups[0].Title)
	assert.Equal(t, "", groups[0].Notes)
	require.Len(t, groups[0].Rosters, 1)
	assert.Equal(t, late.ID, groups[0].Rosters[0].Session.ID)

	assert.Equal(t, "Beginner Swim", groups[1].Title)
	assert.Equal(t, "bring goggles", groups[1].Notes)
	require.Len(t, groups[1].Rosters, 2)
	assert.Equal(t, early.ID, groups[1].Rosters[0].Session.ID)
	assert.Equal(t, day2.ID, groups[1].Rosters[1].Session.ID)
}
