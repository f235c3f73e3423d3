package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewdayService/internal/clock"
)

func pale() *Recipe {
	return &Recipe{
		ID:        "pale-ale",
		Name:      "Pale Ale",
		BatchSize: 20,
		MashSteps: []MashStep{
			{Temperature: 63, DurationMinutes: 40},
			{Temperature: 72, DurationMinutes: 20},
			{Temperature: 78, DurationMinutes: 5},
		},
		BoilMinutes: 60,
		HopSchedule: []HopAddition{
			{Name: "Magnum", AmountGrams: 10, MinutesBeforeEnd: 60},
			{Name: "Cascade", AmountGrams: 20, MinutesBeforeEnd: 15},
			{Name: "Citra", AmountGrams: 30, MinutesBeforeEnd: 0},
		},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, pale().Validate())

	broken := []func(r *Recipe){
		func(r *Recipe) { r.ID = "" },
		func(r *Recipe) { r.Name = "" },
		func(r *Recipe) { r.BatchSize = -1 },
		func(r *Recipe) { r.BoilMinutes = -60 },
		func(r *Recipe) { r.MashSteps[1].DurationMinutes = -5 },
	}
	for _, breakIt := range broken {
		r := pale()
		breakIt(r)
		assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
	}
}

func TestMashStepSeconds(t *testing.T) {
	r := pale()

	seconds, ok := r.MashStepSeconds(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1200), seconds)

	_, ok = r.MashStepSeconds(3)
	assert.False(t, ok)
	_, ok = r.MashStepSeconds(-1)
	assert.False(t, ok)
}

func TestScaleFactor(t *testing.T) {
	r := pale()
	assert.Equal(t, 1.5, r.ScaleFactor(30))
	assert.Equal(t, 1.0, r.ScaleFactor(0))

	r.BatchSize = 0
	assert.Equal(t, 1.0, r.ScaleFactor(30))
}

func TestBoilOffsets(t *testing.T) {
	offsets := pale().BoilOffsets(1.5)
	require.Len(t, offsets, 3)

	assert.Equal(t, "hop-0", offsets[0].Label)
	assert.Equal(t, int64(0), offsets[0].OffsetSeconds)
	assert.Equal(t, int64(2700), offsets[1].OffsetSeconds)
	assert.Equal(t, int64(3600), offsets[2].OffsetSeconds)

	assert.Equal(t, "Hop addition", offsets[1].Title)
	assert.Equal(t, "Add 30.0 g Cascade now (15 minutes before the end)!", offsets[1].Body)
}

func TestBoilOffsetsMatchHopAlerts(t *testing.T) {
	r := pale()
	offsets := r.BoilOffsets(1)
	alerts := r.HopAlerts(1)
	require.Len(t, alerts, len(offsets))

	for i := range offsets {
		assert.Equal(t, offsets[i].Label, alerts[i].Label)
		assert.Equal(t, r.BoilSeconds(), offsets[i].OffsetSeconds+alerts[i].SecondsBeforeEnd)
	}
	assert.Equal(t, clock.HopAlert{
		Label:            "hop-1",
		SecondsBeforeEnd: 900,
		Title:            "Hop addition",
		Body:             "Add 20.0 g Cascade now (15 minutes before the end)!",
	}, alerts[1])
}

func TestFirstWortHops(t *testing.T) {
	r := pale()
	r.HopSchedule = append(r.HopSchedule, HopAddition{Name: "Saaz", AmountGrams: 15, MinutesBeforeEnd: 75})

	hops := r.FirstWortHops(2)
	require.Len(t, hops, 2)
	assert.Equal(t, "20.0 g Magnum", hops[0].Text())
	assert.Equal(t, "30.0 g Saaz", hops[1].Text())

	r.HopSchedule = r.HopSchedule[1:3]
	assert.Empty(t, r.FirstWortHops(1))
}
