package models

import "encoding/json"

// TradeType mirrors the frontend enum values (Portuguese labels are the wire
// format, not display-only strings).
type TradeType string

const (
	TradeBuy  TradeType = "Compra"
	TradeSell TradeType = "Venda"
)

// Valid reports whether t is a known trade type.
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// TradeStatus mirrors the frontend enum values.
type TradeStatus string

const (
	TradeOpen    TradeStatus = "Aberto"
	TradeClosed  TradeStatus = "Fechado"
	TradePending TradeStatus = "Pendente"
)

// Valid reports whether s is a known trade status.
func (s TradeStatus) Valid() bool {
	return s == TradeOpen || s == TradeClosed || s == TradePending
}

// Trade is one operation in the user's journal. Strategy is a derived summary
// column kept in sync with the journal document on explicit saves; Journal
// holds the raw document JSON as stored (the journal package owns its shape).
type Trade struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"-"`
	Date       string          `json:"date"` // YYYY-MM-DD
	Asset      string          `json:"asset"`
	Type       TradeType       `json:"type"`
	Status     TradeStatus     `json:"status"`
	Quantity   float64         `json:"quantity"`
	EntryPrice float64         `json:"entryPrice"`
	ExitPrice  *float64        `json:"exitPrice,omitempty"`
	PnL        *float64        `json:"pnl,omitempty"`
	Strategy   string          `json:"strategy"`
	Journal    json.RawMessage `json:"journal,omitempty"`
	CreatedAt  string          `json:"createdAt,omitempty"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// TradeFilter narrows trade listings; zero values mean "no constraint".
type TradeFilter struct {
	Asset    string      `json:"asset"`
	Type     TradeType   `json:"type"`
	Status   TradeStatus `json:"status"`
	DateFrom string      `json:"dateFrom"`
	DateTo   string      `json:"dateTo"`
}

// DashboardStats are the KPI cards over the user's closed trades.
type DashboardStats struct {
	WinRate     float64 `json:"winRate"`
	RiskReturn  float64 `json:"riskReturn"`
	TotalTrades int     `json:"totalTrades"`
	TotalPnL    float64 `json:"totalPnL"`
}
