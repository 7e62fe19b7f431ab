package models

import "github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/loyalty"

type SessionRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type SessionResponse struct {
	Party     string `json:"party"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type RedeemRequest struct {
	TokenContractID string `json:"token_contract_id"`
	BusinessParty   string `json:"business_party"`
	RewardID        string `json:"reward_id"`
	RewardName      string `json:"reward_name"`
	TokenCost       int64  `json:"token_cost"`
}

type TransferRequest struct {
	TokenContractID string `json:"token_contract_id"`
	RecipientParty  string `json:"recipient_party"`
	Amount          int64  `json:"amount"`
}

type ScanRequest struct {
	Voucher loyalty.SignedVoucher `json:"voucher"`
	Phone   string                `json:"phone"`
}
