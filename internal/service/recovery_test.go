package service

import (
	"context"
	"testing"

	"scotia-sense/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogInjuryRequiresReason(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "   ")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestInjuryLatestWins(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	status, err := f.recoverySvc.CurrentStatus(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	assert.False(t, status.IsInjured)

	_, err = f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "first knock")
	require.NoError(t, err)
	_, err = f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "second knock")
	require.NoError(t, err)

	status, err = f.recoverySvc.CurrentStatus(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	assert.True(t, status.IsInjured)
	assert.Equal(t, "second knock", status.Reason)
	require.NotNil(t, status.Since)
}

func TestClearInjuryResetsStage(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "concussion")
	require.NoError(t, err)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 3)
	require.NoError(t, err)

	stage, err := f.recoverySvc.CurrentStage(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	require.NotNil(t, stage)
	assert.Equal(t, 3, *stage)

	require.NoError(t, f.recoverySvc.ClearInjury(context.Background(), clinician, athleteID))

	status, err := f.recoverySvc.CurrentStatus(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	assert.False(t, status.IsInjured)
	assert.Nil(t, status.Since)

	stage, err = f.recoverySvc.CurrentStage(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	assert.Nil(t, stage)
}

func TestSetStageBounds(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "concussion")
	require.NoError(t, err)

	var validation *domain.ValidationError
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 0)
	require.ErrorAs(t, err, &validation)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 7)
	require.ErrorAs(t, err, &validation)

	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 1)
	require.NoError(t, err)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 6)
	require.NoError(t, err)
}

func TestSetStageRequiresActiveInjury(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 2)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSetStageAfterClearanceRejected(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "concussion")
	require.NoError(t, err)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 3)
	require.NoError(t, err)

	require.NoError(t, f.recoverySvc.ClearInjury(context.Background(), clinician, athleteID))

	// The injured-state re-read and the stage append share a transaction,
	// so a clearance that already landed always wins and the athlete can
	// never end up healthy but staged.
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 4)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	stage, err := f.recoverySvc.CurrentStage(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	assert.Nil(t, stage)
}

func TestSetStageNonMonotonic(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "concussion")
	require.NoError(t, err)

	// Regression during graded return: 4 back to 2 is a legitimate call.
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 4)
	require.NoError(t, err)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 2)
	require.NoError(t, err)

	stage, err := f.recoverySvc.CurrentStage(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	require.NotNil(t, stage)
	assert.Equal(t, 2, *stage)
}

func TestInjuryHistoryKeepsFullLog(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "first episode")
	require.NoError(t, err)
	require.NoError(t, f.recoverySvc.ClearInjury(context.Background(), clinician, athleteID))
	_, err = f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "second episode")
	require.NoError(t, err)

	history, err := f.recoverySvc.InjuryHistory(context.Background(), clinician, athleteID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].IsInjured)
	assert.False(t, history[1].IsInjured)
	assert.True(t, history[2].IsInjured)
}

func TestInjuryManagementIsClinicianOnly(t *testing.T) {
	f := newFixture(t)
	_, athlete, athleteID := f.seedClinicianWithAthlete(t)

	var forbidden *domain.ForbiddenError
	_, err := f.recoverySvc.LogInjury(context.Background(), athlete, athleteID, "self report")
	require.ErrorAs(t, err, &forbidden)
	require.ErrorAs(t, f.recoverySvc.ClearInjury(context.Background(), athlete, athleteID), &forbidden)
	_, err = f.recoverySvc.SetStage(context.Background(), athlete, athleteID, 1)
	require.ErrorAs(t, err, &forbidden)

	// The athlete can still read their own status.
	_, err = f.recoverySvc.CurrentStatus(context.Background(), athlete, athleteID)
	require.NoError(t, err)
}
