package brewcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" Brix ")
	require.NoError(t, err)
	assert.Equal(t, UnitBrix, u)

	_, err = ParseUnit("oechsle")
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestPlatoGravityRoundTrip(t *testing.T) {
	for _, plato := range []float64{0, 5, 12, 16, 20} {
		assert.InDelta(t, plato, SGToPlato(PlatoToSG(plato)), 0.05, "plato %v", plato)
	}
	assert.InDelta(t, 1.048, PlatoToSG(12), 0.001)
}

func TestBrixPlato(t *testing.T) {
	assert.InDelta(t, 12.474, PlatoToBrix(12), 0.001)
	assert.InDelta(t, 12, BrixToPlato(PlatoToBrix(12)), 1e-9)
}

func TestABV(t *testing.T) {
	tests := []struct {
		name  string
		og    float64
		fg    float64
		unit  Unit
		want  float64
		delta float64
	}{
		{name: "plato", og: 12, fg: 3, unit: UnitPlato, want: 4.73, delta: 0.001},
		{name: "gravity", og: 1.048, fg: 1.012, unit: UnitGravity, want: 4.7, delta: 0.15},
		{name: "brix", og: 12, fg: 6, unit: UnitBrix, want: 4.82, delta: 0.05},
		{name: "nothing fermented", og: 12, fg: 12, unit: UnitPlato, want: 0, delta: 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ABV(tt.og, tt.fg, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestABVErrors(t *testing.T) {
	_, err := ABV(12, 3, Unit("oechsle"))
	assert.ErrorIs(t, err, ErrInvalidUnit)

	_, err = ABV(0, 0, UnitPlato)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ABVRefractometer(12, 6, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		value float64
		from  Unit
		to    Unit
		want  float64
	}{
		{12, UnitPlato, UnitBrix, 12.47},
		{12, UnitPlato, UnitGravity, 1.048},
		{12.47, UnitBrix, UnitPlato, 12.0},
		{1.0123456, UnitGravity, UnitGravity, 1.0123456},
	}
	for _, tt := range tests {
		got, err := Convert(tt.value, tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v %s -> %s", tt.value, tt.from, tt.to)
	}
}

func TestConvertInvalidUnits(t *testing.T) {
	_, err := Convert(12, "oechsle", UnitPlato)
	assert.ErrorIs(t, err, ErrInvalidUnit)

	_, err = Convert(12, UnitPlato, "oechsle")
	assert.ErrorIs(t, err, ErrInvalidUnit)

	_, err = Convert(12, "oechsle", "oechsle")
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestAdjustHopAmount(t *testing.T) {
	got, err := AdjustHopAmount(20, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got)

	got, err = AdjustHopAmount(10, 7.5, 6.8)
	require.NoError(t, err)
	assert.Equal(t, 11.0, got)

	_, err = AdjustHopAmount(10, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCorrectPlatoTemp(t *testing.T) {
	assert.InDelta(t, 12, CorrectPlatoTemp(12, 20, 20), 0.05)
	assert.Greater(t, CorrectPlatoTemp(12, 20, 30), CorrectPlatoTemp(12, 20, 20))
	assert.Less(t, CorrectPlatoTemp(12, 20, 10), CorrectPlatoTemp(12, 20, 20))
}

func TestDilutionVolume(t *testing.T) {
	got, err := DilutionVolume(16, 20, 12)
	require.NoError(t, err)
	assert.Equal(t, 6.67, got)

	got, err = DilutionVolume(12, 20, 12)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = DilutionVolume(16, 20, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
