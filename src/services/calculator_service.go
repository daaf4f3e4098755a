// backend/src/services/calculator_service.go
package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/protrade/backend/src/models"
)

// Point values for the B3 mini contracts, per contract.
const (
	WinPointValue = 0.20
	WdoPointValue = 10.00
)

// CalculateMiniContract resolves the financial result of a WIN/WDO operation:
// points moved times the contract point value times the number of contracts.
// Negative points model a stop loss.
func CalculateMiniContract(req models.MiniContractRequest) (*models.MiniContractResult, error) {
	var pointValue float64
	switch strings.ToUpper(strings.TrimSpace(req.Asset)) {
	case "WIN":
		pointValue = WinPointValue
	case "WDO":
		pointValue = WdoPointValue
	default:
		return nil, fmt.Errorf("%w: ativo '%s' não suportado (use WIN ou WDO)", ErrInvalidCalculatorInput, req.Asset)
	}
	if req.Contracts <= 0 {
		return nil, fmt.Errorf("%w: número de contratos deve ser positivo", ErrInvalidCalculatorInput)
	}

	valuePerPoint := pointValue * float64(req.Contracts)
	return &models.MiniContractResult{
		Multiplier:      pointValue,
		ValuePerPoint:   valuePerPoint,
		FinancialResult: req.Points * valuePerPoint,
	}, nil
}

// CalculateRiskReward breaks an entry/stop/target plan into per-share and
// total figures. Percentages are signed relative to the entry price; the
// ratio is zero when the plan carries no risk.
func CalculateRiskReward(req models.RiskRewardRequest) (*models.RiskRewardResult, error) {
	if req.EntryPrice <= 0 {
		return nil, fmt.Errorf("%w: preço de entrada deve ser positivo", ErrInvalidCalculatorInput)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantidade deve ser positiva", ErrInvalidCalculatorInput)
	}

	riskPerShare := math.Abs(req.EntryPrice - req.StopPrice)
	rewardPerShare := math.Abs(req.TargetPrice - req.EntryPrice)

	var ratio float64
	if riskPerShare > 0 {
		ratio = rewardPerShare / riskPerShare
	}

	return &models.RiskRewardResult{
		RiskPerShare:   riskPerShare,
		RewardPerShare: rewardPerShare,
		TotalRisk:      riskPerShare * req.Quantity,
		TotalReward:    rewardPerShare * req.Quantity,
		RiskPercent:    ((req.StopPrice - req.EntryPrice) / req.EntryPrice) * 100,
		RewardPercent:  ((req.TargetPrice - req.EntryPrice) / req.EntryPrice) * 100,
		Ratio:          ratio,
	}, nil
}

// CalculateAveragePrice combines buy lots into a weighted average. Entries
// with non-positive quantity or price are rejected rather than skipped so a
// typo does not silently skew the average.
func CalculateAveragePrice(entries []models.AveragePriceEntry) (*models.AveragePriceResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: pelo menos uma entrada é necessária", ErrInvalidCalculatorInput)
	}

	var totalQuantity, totalInvested float64
	for i, e := range entries {
		if e.Price <= 0 || e.Quantity <= 0 {
			return nil, fmt.Errorf("%w: entrada %d tem preço ou quantidade inválidos", ErrInvalidCalculatorInput, i+1)
		}
		totalQuantity += e.Quantity
		totalInvested += e.Price * e.Quantity
	}

	return &models.AveragePriceResult{
		AveragePrice:  totalInvested / totalQuantity,
		TotalQuantity: totalQuantity,
		TotalInvested: totalInvested,
	}, nil
}
