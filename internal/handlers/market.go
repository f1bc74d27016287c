// internal/handlers/market.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

// MarketHandler serves indicative market data for the portal home
// screen. Values are static snapshots until a data feed is wired in.
type MarketHandler struct{}

func NewMarketHandler() *MarketHandler {
	return &MarketHandler{}
}

type marketIndex struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

type marketMover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

type marketNews struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// GET /market/indices
func (h *MarketHandler) Indices(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"indices": []marketIndex{
			{Name: "NIFTY 50", Value: 24712.80, Change: 124.55, ChangePercent: 0.51},
			{Name: "SENSEX", Value: 81224.75, Change: 378.20, ChangePercent: 0.47},
			{Name: "NIFTY BANK", Value: 51386.40, Change: -92.15, ChangePercent: -0.18},
		},
		"as_of": time.Now().UTC(),
	})
}

// GET /market/gainers
func (h *MarketHandler) Gainers(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"gainers": []marketMover{
			{Symbol: "TATAMOTORS", Name: "Tata Motors", Price: 1044.30, ChangePercent: 4.2},
			{Symbol: "HDFCBANK", Name: "HDFC Bank", Price: 1698.55, ChangePercent: 2.8},
			{Symbol: "INFY", Name: "Infosys", Price: 1879.10, ChangePercent: 2.1},
		},
		"as_of": time.Now().UTC(),
	})
}

// GET /market/news
func (h *MarketHandler) News(c *gin.Context) {
	now := time.Now().UTC()
	utils.SuccessResponse(c, gin.H{
		"news": []marketNews{
			{
				Title:       "Primary market pipeline stays strong into the quarter",
				Summary:     "A crowded IPO calendar keeps retail techies engaged as subscription numbers hold up.",
				Source:      "Market Desk",
				PublishedAt: now.Add(-2 * time.Hour),
			},
			{
				Title:       "Grey market premiums cool after listing-day swings",
				Summary:     "Unofficial premiums for upcoming issues narrowed this week as volatility picked up.",
				Source:      "Market Desk",
				PublishedAt: now.Add(-6 * time.Hour),
			},
		},
	})
}
