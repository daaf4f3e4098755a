package handlers

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func floatPtr(v float64) *float64 { return &v }

func TestResolvePnL(t *testing.T) {
	testCases := []struct {
		name     string
		trade    models.Trade
		expected *float64
	}{
		{
			name: "closed buy trade",
			trade: models.Trade{
				Type: models.TradeBuy, Status: models.TradeClosed,
				Quantity: 100, EntryPrice: 10, ExitPrice: floatPtr(12),
			},
			expected: floatPtr(200),
		},
		{
			name: "closed sell trade inverts the direction",
			trade: models.Trade{
				Type: models.TradeSell, Status: models.TradeClosed,
				Quantity: 100, EntryPrice: 12, ExitPrice: floatPtr(10),
			},
			expected: floatPtr(200),
		},
		{
			name: "losing sell trade",
			trade: models.Trade{
				Type: models.TradeSell, Status: models.TradeClosed,
				Quantity: 5, EntryPrice: 10, ExitPrice: floatPtr(12),
			},
			expected: floatPtr(-10),
		},
		{
			name: "open trade keeps pnl null even with an exit price",
			trade: models.Trade{
				Type: models.TradeBuy, Status: models.TradeOpen,
				Quantity: 100, EntryPrice: 10, ExitPrice: floatPtr(12),
			},
			expected: nil,
		},
		{
			name: "closed trade without exit price keeps pnl null",
			trade: models.Trade{
				Type: models.TradeBuy, Status: models.TradeClosed,
				Quantity: 100, EntryPrice: 10,
			},
			expected: nil,
		},
		{
			name: "client-sent pnl is recomputed, not trusted",
			trade: models.Trade{
				Type: models.TradeBuy, Status: models.TradeClosed,
				Quantity: 100, EntryPrice: 10, ExitPrice: floatPtr(12),
				PnL: floatPtr(99999),
			},
			expected: floatPtr(200),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolvePnL(&tc.trade)
			if tc.expected == nil {
				assert.Nil(t, tc.trade.PnL)
			} else {
				require.NotNil(t, tc.trade.PnL)
				assert.InDelta(t, *tc.expected, *tc.trade.PnL, 0.0001)
			}
		})
	}
}

func TestValidateTradePayload(t *testing.T) {
	valid := func() models.Trade {
		return models.Trade{
			Date: "2025-03-10", Asset: "win", Type: models.TradeBuy,
			Status: models.TradeClosed, Quantity: 5, EntryPrice: 128500,
			ExitPrice: floatPtr(128700), Strategy: "Rompimento",
		}
	}

	t.Run("valid payload normalizes the asset", func(t *testing.T) {
		trade := valid()
		require.NoError(t, validateTradePayload(&trade))
		assert.Equal(t, "WIN", trade.Asset)
	})

	t.Run("strategy is sanitized", func(t *testing.T) {
		trade := valid()
		trade.Strategy = "<script>alert(1)</script>Rompimento"
		require.NoError(t, validateTradePayload(&trade))
		assert.Equal(t, "Rompimento", trade.Strategy)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		trade := valid()
		trade.Date = "10/03/2025"
		assert.Error(t, validateTradePayload(&trade))
	})

	t.Run("rejects unknown trade type", func(t *testing.T) {
		trade := valid()
		trade.Type = "Long"
		assert.Error(t, validateTradePayload(&trade))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		trade := valid()
		trade.Status = "Cancelado"
		assert.Error(t, validateTradePayload(&trade))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		trade := valid()
		trade.Quantity = 0
		assert.Error(t, validateTradePayload(&trade))
	})

	t.Run("rejects negative entry price", func(t *testing.T) {
		trade := valid()
		trade.EntryPrice = -1
		assert.Error(t, validateTradePayload(&trade))
	})
}

func TestComputeDashboardStats(t *testing.T) {
	trades := []models.Trade{
		{Status: models.TradeClosed, PnL: floatPtr(100)},
		{Status: models.TradeClosed, PnL: floatPtr(50)},
		{Status: models.TradeClosed, PnL: floatPtr(-50)},
		{Status: models.TradeOpen},
	}

	stats := computeDashboardStats(trades)

	assert.Equal(t, 4, stats.TotalTrades)
	assert.InDelta(t, 100.0, stats.TotalPnL, 0.0001)
	assert.InDelta(t, 66.6666, stats.WinRate, 0.001)
	// avg win 75, avg loss 50
	assert.InDelta(t, 1.5, stats.RiskReturn, 0.0001)
}

func TestComputeDashboardStatsEmpty(t *testing.T) {
	stats := computeDashboardStats(nil)
	assert.Equal(t, 0, stats.TotalTrades)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.RiskReturn)
	assert.Zero(t, stats.TotalPnL)
}

func TestFormatDecimalBR(t *testing.T) {
	assert.Equal(t, "128500,00", formatDecimalBR(128500))
	assert.Equal(t, "0,25", formatDecimalBR(0.25))
	assert.Equal(t, "-30,00", formatDecimalBR(-30))
}

func TestBuildTradesCSV(t *testing.T) {
	trades := []models.Trade{
		{
			Date: "2025-03-10", Asset: "WIN", Type: models.TradeBuy,
			Status: models.TradeClosed, Quantity: 5, EntryPrice: 128500,
			ExitPrice: floatPtr(128700), PnL: floatPtr(200),
			Strategy: "=SUM(A1)",
		},
		{
			Date: "2025-03-11", Asset: "WDO", Type: models.TradeSell,
			Status: models.TradeOpen, Quantity: 2, EntryPrice: 5120.5,
		},
	}

	csv := string(buildTradesCSV(trades))

	require.True(t, strings.HasPrefix(csv, "\uFEFF"), "export must start with the UTF-8 BOM")

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(csv, "\uFEFF"), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Data;Ativo;Tipo;Status;Quantidade;Preço Entrada;Preço Saída;Resultado;Estratégia", lines[0])
	assert.Equal(t, "2025-03-10;WIN;Compra;Fechado;5,00;128500,00;128700,00;200,00;'=SUM(A1)", lines[1])
	// open trade exports empty exit price and result cells
	assert.Equal(t, "2025-03-11;WDO;Venda;Aberto;2,00;5120,50;;;", lines[2])
}
