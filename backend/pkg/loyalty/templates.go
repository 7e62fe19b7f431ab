// Package loyalty implements the loyalty-program workflows and derived
// read models on top of the Canton ledger templates. Balances, program
// totals and reward inventory are mutated exclusively by ledger-side
// choice execution; this package only submits requests and reshapes
// responses.
package loyalty

import (
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/cantonclient"
)

// Template IDs for the loyalty contracts.
var (
	TemplateBusinessProfile = cantonclient.TemplateID{ModuleName: "BusinessProfile", EntityName: "BusinessProfile"}
	TemplateLoyaltyProgram  = cantonclient.TemplateID{ModuleName: "BusinessProfile", EntityName: "LoyaltyProgram"}
	TemplateLoyaltyToken    = cantonclient.TemplateID{ModuleName: "LoyaltyToken", EntityName: "LoyaltyToken"}
	TemplateReward          = cantonclient.TemplateID{ModuleName: "Reward", EntityName: "Reward"}
	TemplateRedemption      = cantonclient.TemplateID{ModuleName: "LoyaltyToken", EntityName: "RedemptionReceipt"}
)

// BusinessProfilePayload is the BusinessProfile template payload.
type BusinessProfilePayload struct {
	BusinessID   string `json:"businessId"`
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	CreatedAt    string `json:"createdAt"`
	IsActive     bool   `json:"isActive"`
}

// LoyaltyProgramPayload is the LoyaltyProgram template payload. The
// running totals are maintained by the ledger's choices.
type LoyaltyProgramPayload struct {
	Business      string `json:"business"`
	ProgramName   string `json:"programName"`
	TokenName     string `json:"tokenName"`
	TokenSymbol   string `json:"tokenSymbol"`
	Description   string `json:"description"`
	TotalIssued   int64  `json:"totalIssued"`
	TotalRedeemed int64  `json:"totalRedeemed"`
	IsActive      bool   `json:"isActive"`
}

// RewardPayload is the Reward template payload.
type RewardPayload struct {
	Business    string  `json:"business"`
	RewardID    string  `json:"rewardId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TokenCost   int64   `json:"tokenCost"`
	Category    string  `json:"category"`
	Inventory   int64   `json:"inventory"`
	ImageURL    *string `json:"imageUrl"`
	Terms       *string `json:"terms"`
	ValidFrom   string  `json:"validFrom"`
	ValidUntil  *string `json:"validUntil"`
	IsActive    bool    `json:"isActive"`
}

// TokenBalancePayload is the LoyaltyToken template payload: one
// customer's holding under one business's program.
type TokenBalancePayload struct {
	Business    string `json:"business"`
	Customer    string `json:"customer"`
	ProgramName string `json:"programName"`
	TokenName   string `json:"tokenName"`
	TokenSymbol string `json:"tokenSymbol"`
	Balance     int64  `json:"balance"`
	IsLocked    bool   `json:"isLocked"`
}
