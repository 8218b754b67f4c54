package crop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDates(t *testing.T) {
	planted := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		variety           string
		fertilizationDays int
		harvestDays       int
	}{
		{"Nadu", 15, 90},
		{"Samba", 20, 120},
		{"Red Rice", 18, 110},
		{"Bg 352", 14, 85},
		{"Suwandel", 25, 130},
		{"Pachchaperumal", 22, 125},
	}

	for _, tc := range cases {
		t.Run(tc.variety, func(t *testing.T) {
			fertilization, harvest, err := DeriveDates(planted, tc.variety)
			require.NoError(t, err)
			assert.Equal(t, planted.AddDate(0, 0, tc.fertilizationDays), fertilization)
			assert.Equal(t, planted.AddDate(0, 0, tc.harvestDays), harvest)
		})
	}
}

func TestDeriveDatesUnknownVariety(t *testing.T) {
	_, _, err := DeriveDates(time.Now(), "Basmati")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported paddy variety")
}

func TestVarietiesCoversOffsetTable(t *testing.T) {
	vs := Varieties()
	assert.Len(t, vs, len(varietyOffsets))
	for _, v := range vs {
		_, ok := varietyOffsets[v]
		assert.True(t, ok, "variety %q missing from offset table", v)
	}
}
