// internal/handlers/reference.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

// ReferenceHandler serves static reference lists used by the frontend:
// partner brokers for opening demat accounts, and prominent investors
// whose IPO activity the portal tracks.
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

type broker struct {
	Name          string  `json:"name"`
	AccountCharge float64 `json:"account_opening_charge"`
	BrokeragePlan string  `json:"brokerage_plan"`
	Rating        float64 `json:"rating"`
	URL           string  `json:"url"`
}

type prominentInvestor struct {
	Name     string   `json:"name"`
	Firm     string   `json:"firm"`
	KnownFor string   `json:"known_for"`
	Sectors  []string `json:"sectors"`
}

// GET /brokers
func (h *ReferenceHandler) Brokers(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"brokers": []broker{
			{Name: "Zerodha", AccountCharge: 0, BrokeragePlan: "Flat 20 per order", Rating: 4.5, URL: "https://zerodha.com"},
			{Name: "Groww", AccountCharge: 0, BrokeragePlan: "Flat 20 per order", Rating: 4.3, URL: "https://groww.in"},
			{Name: "Upstox", AccountCharge: 0, BrokeragePlan: "Flat 20 per order", Rating: 4.2, URL: "https://upstox.com"},
			{Name: "Angel One", AccountCharge: 0, BrokeragePlan: "Flat 20 per order", Rating: 4.0, URL: "https://angelone.in"},
		},
	})
}

// GET /sharks
func (h *ReferenceHandler) Sharks(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"investors": []prominentInvestor{
			{Name: "Ashish Kacholia", Firm: "Lucky Investment Managers", KnownFor: "Mid-cap picks", Sectors: []string{"manufacturing", "technology"}},
			{Name: "Vijay Kedia", Firm: "Kedia Securities", KnownFor: "Long-term SME bets", Sectors: []string{"technology", "automotive"}},
			{Name: "Mukul Agrawal", Firm: "Param Capital", KnownFor: "Special situations", Sectors: []string{"finance", "pharmaceuticals"}},
		},
	})
}
