// backend/src/services/calculator_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/protrade/backend/src/models"
)

func TestCalculateMiniContract(t *testing.T) {
	tests := []struct {
		name       string
		req        models.MiniContractRequest
		wantResult float64
		wantErr    bool
	}{
		{"WIN gain", models.MiniContractRequest{Asset: "WIN", Contracts: 5, Points: 200}, 200.0, false},
		{"WDO gain", models.MiniContractRequest{Asset: "WDO", Contracts: 2, Points: 10}, 200.0, false},
		{"WIN stop loss", models.MiniContractRequest{Asset: "win", Contracts: 1, Points: -150}, -30.0, false},
		{"unknown asset", models.MiniContractRequest{Asset: "PETR4", Contracts: 1, Points: 100}, 0, true},
		{"zero contracts", models.MiniContractRequest{Asset: "WIN", Contracts: 0, Points: 100}, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := CalculateMiniContract(tc.req)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCalculatorInput)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.wantResult, res.FinancialResult, 1e-9)
		})
	}
}

func TestCalculateRiskReward(t *testing.T) {
	res, err := CalculateRiskReward(models.RiskRewardRequest{
		EntryPrice:  100,
		StopPrice:   95,
		TargetPrice: 110,
		Quantity:    200,
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, res.RiskPerShare, 1e-9)
	assert.InDelta(t, 10.0, res.RewardPerShare, 1e-9)
	assert.InDelta(t, 1000.0, res.TotalRisk, 1e-9)
	assert.InDelta(t, 2000.0, res.TotalReward, 1e-9)
	assert.InDelta(t, -5.0, res.RiskPercent, 1e-9)
	assert.InDelta(t, 10.0, res.RewardPercent, 1e-9)
	assert.InDelta(t, 2.0, res.Ratio, 1e-9)
}

func TestCalculateRiskRewardZeroRisk(t *testing.T) {
	res, err := CalculateRiskReward(models.RiskRewardRequest{
		EntryPrice:  50,
		StopPrice:   50,
		TargetPrice: 55,
		Quantity:    100,
	})
	require.NoError(t, err)
	assert.Zero(t, res.RiskPerShare)
	assert.Zero(t, res.Ratio)
}

func TestCalculateRiskRewardRejectsBadInput(t *testing.T) {
	_, err := CalculateRiskReward(models.RiskRewardRequest{EntryPrice: 0, Quantity: 10})
	assert.ErrorIs(t, err, ErrInvalidCalculatorInput)

	_, err = CalculateRiskReward(models.RiskRewardRequest{EntryPrice: 100, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidCalculatorInput)
}

func TestCalculateAveragePrice(t *testing.T) {
	res, err := CalculateAveragePrice([]models.AveragePriceEntry{
		{Price: 10, Quantity: 100},
		{Price: 12, Quantity: 300},
	})
	require.NoError(t, err)

	assert.InDelta(t, 11.5, res.AveragePrice, 1e-9)
	assert.InDelta(t, 400.0, res.TotalQuantity, 1e-9)
	assert.InDelta(t, 4600.0, res.TotalInvested, 1e-9)
}

func TestCalculateAveragePriceRejectsInvalidEntries(t *testing.T) {
	_, err := CalculateAveragePrice(nil)
	assert.ErrorIs(t, err, ErrInvalidCalculatorInput)

	_, err = CalculateAveragePrice([]models.AveragePriceEntry{{Price: 10, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidCalculatorInput)
}
