package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

func TestOfferingService_AppliesDefaults(t *testing.T) {
	store := newFakeOfferingStore()
	svc := NewOfferingService(store, CapacityDefaults{BaseCapacity: 6}, testLogger)
	ctx := context.Background()

	o, err := svc.CreateOffering(ctx, &dto.CreateOfferingRequest{Title: "  Beginner Swim ", Notes: helpers.Ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Beginner Swim", o.Title)
	assert.Nil(t, o.Notes)
	assert.Equal(t, string(domain.DefaultRatio), o.DefaultClassRatio)
	assert.Equal(t, 6.0, o.BaseCapacity)
	assert.True(t, o.IsActive)

	updated, err := svc.UpdateOffering(ctx, o.ID, &dto.UpdateOfferingRequest{
		Title:             "Beginner Swim",
		DefaultClassRatio: "1:1",
		BaseCapacity:      helpers.Ptr(3.0),
		IsActive:          helpers.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "1:1", updated.DefaultClassRatio)
	assert.Equal(t, 3.0, updated.BaseCapacity)
	assert.False(t, updated.IsActive)

	_, err = svc.CreateOffering(ctx, &dto.CreateOfferingRequest{Title: "Odd", DefaultClassRatio: "5:1"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.UpdateOffering(ctx, 404, &dto.UpdateOfferingRequest{Title: "Missing"})
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)

	page, err := svc.ListOfferings(ctx, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Pagination.TotalItems)
}

func TestOfferingService_ZeroCapacityIsKept(t *testing.T) {
	store := newFakeOfferingStore()
	svc := NewOfferingService(store, CapacityDefaults{BaseCapacity: 6}, testLogger)
	ctx := context.Background()

	o, err := svc.CreateOffering(ctx, &dto.CreateOfferingRequest{Title: "Private Lesson", DefaultClassRatio: "1:1", BaseCapacity: helpers.Ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.BaseCapacity)

	// omitted on update: unchanged
	updated, err := svc.UpdateOffering(ctx, o.ID, &dto.UpdateOfferingRequest{Title: "Private Lesson"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.BaseCapacity)

	// double-staffed zero-capacity class gets the dynamic floor
	usage := domain.ComputeUsage(nil, 2, updated.BaseCapacity)
	assert.Equal(t, domain.DynamicMinCapacity, usage.EffectiveCapacity)
}

func TestSwimmerService_ParsesBirthDate(t *testing.T) {
	svc := NewSwimmerService(newFakeSwimmerStore(), testLogger)

	s, err := svc.CreateSwimmer(context.Background(), &dto.SwimmerRequest{FirstName: "Ada", LastName: "Yilmaz", BirthDate: helpers.Ptr("2017-05-02")})
	require.NoError(t, err)
	require.NotNil(t, s.BirthDate)
	assert.Equal(t, "2017-05-02", s.BirthDate.Format(helpers.DateLayout))

	_, err = svc.CreateSwimmer(context.Background(), &dto.SwimmerRequest{FirstName: "Ada", LastName: "Yilmaz", BirthDate: helpers.Ptr("02.05.2017")})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
