package brewcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidualCO2FallsWithTemperature(t *testing.T) {
	assert.InDelta(t, 1.69, ResidualCO2(20), 0.01)
	assert.Greater(t, ResidualCO2(8), ResidualCO2(20))
}

func TestPrimingSugar(t *testing.T) {
	tests := []struct {
		name   string
		kind   PrimingKind
		amount float64
		unit   string
	}{
		{name: "sucrose", kind: PrimingSucrose, amount: 6.6, unit: "g/L"},
		{name: "glucose", kind: PrimingGlucose, amount: 7.2, unit: "g/L"},
		{name: "wort", kind: PrimingWort, amount: 70, unit: "ml/L"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrimingSugar(20, 5.0, tt.kind, 12, 3)
			require.NoError(t, err)
			assert.Equal(t, 1.69, got.ResidualCO2)
			assert.Equal(t, 3.31, got.CO2Difference)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.unit, got.AmountUnit)
			assert.Equal(t, 0.44, got.AdditionalABV)
		})
	}
}

func TestPrimingSugarAlreadyCarbonated(t *testing.T) {
	got, err := PrimingSugar(2, 1.0, PrimingSucrose, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, got.CO2Difference)
	assert.Zero(t, got.Amount)
	assert.Zero(t, got.AdditionalABV)
}

func TestPrimingSugarErrors(t *testing.T) {
	_, err := PrimingSugar(20, 7.1, PrimingSucrose, 0, 0)
	assert.ErrorIs(t, err, ErrCarbonationTooHigh)

	_, err = PrimingSugar(20, -1, PrimingSucrose, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = PrimingSugar(20, 5, PrimingWort, 3, 12)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = PrimingSugar(20, 5, PrimingKind("honey"), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPrimingKind)

	_, err = PrimingSugar(20, MaxCarbonation, PrimingSucrose, 0, 0)
	assert.NoError(t, err)
}

func TestParsePrimingKind(t *testing.T) {
	k, err := ParsePrimingKind("Wort")
	require.NoError(t, err)
	assert.Equal(t, PrimingWort, k)

	_, err = ParsePrimingKind("honey")
	assert.ErrorIs(t, err, ErrInvalidPrimingKind)
}

func TestWortSplit(t *testing.T) {
	wort, beer := WortSplit(70)
	assert.Equal(t, 70.0, wort)
	assert.Equal(t, 930.0, beer)
}
