package models

type RegisterBusinessRequest struct {
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProgramName  string `json:"program_name"`
	TokenName    string `json:"token_name"`
	TokenSymbol  string `json:"token_symbol"`
	Description  string `json:"description"`
}

type RegisterBusinessResponse struct {
	BusinessParty     string `json:"business_party"`
	BusinessProfileID string `json:"business_profile_id"`
	ProgramID         string `json:"program_id,omitempty"`
	Token             string `json:"token"`
	ExpiresAt         int64  `json:"expires_at"`
}

type IssueTokensRequest struct {
	ProgramContractID string `json:"program_contract_id"`
	CustomerPhone     string `json:"customer_phone"`
	CustomerName      string `json:"customer_name,omitempty"`
	Amount            int64  `json:"amount"`
	Reason            string `json:"reason"`
}

type CreateRewardRequest struct {
	RewardID    string  `json:"reward_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TokenCost   int64   `json:"token_cost"`
	Category    string  `json:"category"`
	Inventory   int64   `json:"inventory"`
	ImageURL    *string `json:"image_url,omitempty"`
	Terms       *string `json:"terms,omitempty"`
}

type CreateRewardResponse struct {
	ContractID string `json:"contract_id"`
	RewardID   string `json:"reward_id"`
}

type UpdateRewardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TokenCost   *int64  `json:"token_cost,omitempty"`
	Inventory   *int64  `json:"inventory,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Customer is one balance contract joined with bookkeeping contact
// details.
type Customer struct {
	ContractID string `json:"contract_id"`
	Party      string `json:"party"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Balance    int64  `json:"balance"`
}

type VoucherRequest struct {
	ProgramContractID string `json:"program_contract_id"`
	Amount            int64  `json:"amount"`
	Reason            string `json:"reason"`
}
