package types

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBudgetBand(t *testing.T) {
	for _, b := range BudgetBands {
		got, err := ParseBudgetBand(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}

	_, err := ParseBudgetBand("100+")
	assert.True(t, errors.Is(err, ErrInvalidBudgetBand))

	_, err = ParseBudgetBand("")
	assert.True(t, errors.Is(err, ErrInvalidBudgetBand))
}

func TestBudgetBandContains(t *testing.T) {
	tests := []struct {
		band BudgetBand
		wan  string
		want bool
	}{
		{Budget0To5, "0", true},
		{Budget0To5, "4.99", true},
		{Budget0To5, "5", false},
		{Budget10To20, "10", true},
		{Budget10To20, "15", true},
		{Budget10To20, "20", false},
		{Budget50Plus, "50", true},
		{Budget50Plus, "49.99", false},
		{Budget50Plus, "5000", true},
		{BudgetBand("bogus"), "10", false},
	}

	for _, tt := range tests {
		got := tt.band.Contains(decimal.RequireFromString(tt.wan))
		assert.Equalf(t, tt.want, got, "%s contains %s", tt.band, tt.wan)
	}
}

func TestBudgetBandScan(t *testing.T) {
	var b BudgetBand
	require.NoError(t, b.Scan([]byte("20-50")))
	assert.Equal(t, Budget20To50, b)

	require.NoError(t, b.Scan(nil))
	assert.Equal(t, DefaultBudgetBand, b)

	assert.Error(t, b.Scan("7-8"))

	_, err := BudgetBand("7-8").Value()
	assert.Error(t, err)
}

func TestTransitionAllowed(t *testing.T) {
	assert.True(t, TransitionAllowed(StatusPending, StatusApproved, true, false))
	assert.False(t, TransitionAllowed(StatusPending, StatusApproved, false, true))
	assert.True(t, TransitionAllowed(StatusApproved, StatusSold, false, true))
	assert.True(t, TransitionAllowed(StatusMaintenance, StatusApproved, true, false))
	assert.True(t, TransitionAllowed(StatusRejected, StatusPending, false, true))
	assert.False(t, TransitionAllowed(StatusRejected, StatusPending, true, false))
	assert.False(t, TransitionAllowed(StatusSold, StatusApproved, true, true))
	assert.False(t, CanTransition(StatusPending, StatusSold))
}

func TestFlexInputs(t *testing.T) {
	var body struct {
		Brands  FlexList[FlexUint64] `json:"brands"`
		Types   FlexList[FlexUint64] `json:"types"`
		MinYear FlexString           `json:"min_year"`
		Mileage FlexString           `json:"max_mileage"`
	}

	err := json.Unmarshal([]byte(`{"brands":[1,"2",2,0],"types":"3","min_year":2018,"max_mileage":"abc"}`), &body)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2}, IDs(body.Brands))
	assert.Equal(t, []uint64{3}, IDs(body.Types))
	assert.Equal(t, "2018", body.MinYear.String())
	assert.Equal(t, "abc", body.Mileage.String())
	assert.False(t, body.Mileage.Empty())
}

func TestFlexUint64NonNumericStringIsZero(t *testing.T) {
	var list FlexList[FlexUint64]
	require.NoError(t, json.Unmarshal([]byte(`["abc", "7", " 8 ", "-1"]`), &list))
	assert.Equal(t, []uint64{7, 8}, IDs(list))

	var one FlexUint64
	assert.Error(t, json.Unmarshal([]byte(`true`), &one))
}

func TestStoreErrorWrapping(t *testing.T) {
	base := errors.New("connection refused")
	err := Store("load preference", base)
	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, base))

	assert.Nil(t, Store("noop", nil))
	assert.False(t, IsStoreError(Store("load", ErrNotFound)))
}
