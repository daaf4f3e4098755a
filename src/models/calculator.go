package models

// MiniContractRequest sizes a B3 mini-contract operation (WIN or WDO).
type MiniContractRequest struct {
	Asset     string  `json:"asset"` // "WIN" or "WDO"
	Contracts int     `json:"contracts"`
	Points    float64 `json:"points"` // negative simulates a stop loss
}

// MiniContractResult is the financial outcome of a mini-contract simulation.
type MiniContractResult struct {
	Multiplier      float64 `json:"multiplier"`
	ValuePerPoint   float64 `json:"valuePerPoint"`
	FinancialResult float64 `json:"financialResult"`
}

// RiskRewardRequest carries the trade plan for the risk/reward calculator.
type RiskRewardRequest struct {
	EntryPrice  float64 `json:"entryPrice"`
	StopPrice   float64 `json:"stopPrice"`
	TargetPrice float64 `json:"targetPrice"`
	Quantity    float64 `json:"quantity"`
}

// RiskRewardResult breaks a plan into per-share and total risk/reward plus
// the ratio between them.
type RiskRewardResult struct {
	RiskPerShare   float64 `json:"riskPerShare"`
	RewardPerShare float64 `json:"rewardPerShare"`
	TotalRisk      float64 `json:"totalRisk"`
	TotalReward    float64 `json:"totalReward"`
	RiskPercent    float64 `json:"riskPercent"`
	RewardPercent  float64 `json:"rewardPercent"`
	Ratio          float64 `json:"ratio"`
}

// AveragePriceEntry is one buy lot fed into the average-price calculator.
type AveragePriceEntry struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// AveragePriceResult summarizes the combined position.
type AveragePriceResult struct {
	AveragePrice  float64 `json:"averagePrice"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalInvested float64 `json:"totalInvested"`
}
