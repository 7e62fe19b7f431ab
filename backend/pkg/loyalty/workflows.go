package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/cantonclient"
)

// Ops runs the loyalty workflows. Each workflow is a fixed sequence of
// ledger calls with no compensating action on partial failure: a
// profile created before a failed program choice stays on the ledger.
type Ops struct {
	canton *cantonclient.Client
	logger zerolog.Logger
}

func NewOps(canton *cantonclient.Client, logger zerolog.Logger) *Ops {
	return &Ops{canton: canton, logger: logger}
}

type RegisterBusinessInput struct {
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProgramName  string `json:"programName"`
	TokenName    string `json:"tokenName"`
	TokenSymbol  string `json:"tokenSymbol"`
	Description  string `json:"description"`
}

// RegisterBusinessResult reports the outcome of onboarding. ProgramID
// is empty when the program-creation event could not be located; that
// is soft incompleteness, not failure, and callers must check it.
type RegisterBusinessResult struct {
	BusinessParty     string `json:"businessParty"`
	BusinessProfileID string `json:"businessProfileId"`
	ProgramID         string `json:"programId,omitempty"`
}

// RegisterBusiness allocates a party for the business, creates its
// profile contract and exercises CreateLoyaltyProgram on it.
func (o *Ops) RegisterBusiness(ctx context.Context, in RegisterBusinessInput) (*RegisterBusinessResult, error) {
	hint := cantonclient.BusinessPartyHint(in.BusinessName, in.Email)
	party, err := o.canton.AllocateParty(ctx, in.BusinessName, hint)
	if err != nil {
		return nil, fmt.Errorf("allocate business party: %w", err)
	}

	profile, err := o.canton.Create(ctx, TemplateBusinessProfile, BusinessProfilePayload{
		BusinessID:   party.Party,
		BusinessName: in.BusinessName,
		Category:     in.Category,
		Location:     in.Location,
		Email:        in.Email,
		Phone:        in.Phone,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		IsActive:     true,
	}, []string{party.Party})
	if err != nil {
		return nil, fmt.Errorf("create business profile: %w", err)
	}

	result, err := o.canton.Exercise(ctx, TemplateBusinessProfile, profile.ContractID, "CreateLoyaltyProgram", map[string]interface{}{
		"programName": in.ProgramName,
		"tokenName":   in.TokenName,
		"tokenSymbol": in.TokenSymbol,
		"description": in.Description,
	}, []string{party.Party})
	if err != nil {
		return nil, fmt.Errorf("create loyalty program: %w", err)
	}

	out := &RegisterBusinessResult{
		BusinessParty:     party.Party,
		BusinessProfileID: profile.ContractID,
	}
	if program, ok := result.FirstCreatedWhere("programName", in.ProgramName); ok {
		out.ProgramID = program.ContractID
	} else {
		o.logger.Warn().Str("business", party.Party).Msg("program creation event not found")
	}
	return out, nil
}

type IssueTokensInput struct {
	BusinessParty     string `json:"businessParty"`
	ProgramContractID string `json:"programContractId"`
	CustomerPhone     string `json:"customerPhone"`
	Amount            int64  `json:"amount"`
	Reason            string `json:"reason"`
}

// IssueTokensResult always names the customer party. TokenContractID is
// empty when no balance-shaped event matched.
type IssueTokensResult struct {
	CustomerParty        string `json:"customerParty"`
	TokenContractID      string `json:"tokenContractId,omitempty"`
	NewProgramContractID string `json:"newProgramContractId,omitempty"`
}

// IssueTokens allocates (or tolerates an existing) customer party from
// the phone-derived hint, then exercises IssueTokens on the program
// acting as the business.
func (o *Ops) IssueTokens(ctx context.Context, in IssueTokensInput) (*IssueTokensResult, error) {
	hint := cantonclient.PhonePartyHint(in.CustomerPhone)
	customerParty := hint
	if party, err := o.canton.AllocateParty(ctx, in.CustomerPhone, hint); err != nil {
		// Allocation failure is absorbed as "already allocated"; the
		// deterministic hint stands in either way.
		o.logger.Warn().Err(err).Str("hint", hint).Msg("party allocation failed, assuming existing party")
	} else {
		customerParty = party.Party
	}

	result, err := o.canton.Exercise(ctx, TemplateLoyaltyProgram, in.ProgramContractID, "IssueTokens", map[string]interface{}{
		"customer": customerParty,
		"amount":   in.Amount,
		"reason":   in.Reason,
	}, []string{in.BusinessParty})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	out := &IssueTokensResult{
		CustomerParty:        customerParty,
		NewProgramContractID: result.ResultField("_1"),
	}
	if token, ok := result.FirstCreatedWithField("balance"); ok {
		out.TokenContractID = token.ContractID
	} else {
		o.logger.Warn().Str("customer", customerParty).Msg("balance contract event not found")
	}
	return out, nil
}

type CreateRewardInput struct {
	BusinessParty string  `json:"businessParty"`
	RewardID      string  `json:"rewardId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	TokenCost     int64   `json:"tokenCost"`
	Category      string  `json:"category"`
	Inventory     int64   `json:"inventory"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	Terms         *string `json:"terms,omitempty"`
}

// CreateReward creates a Reward contract, valid from now with no
// expiry.
func (o *Ops) CreateReward(ctx context.Context, in CreateRewardInput) (string, error) {
	result, err := o.canton.Create(ctx, TemplateReward, RewardPayload{
		Business:    in.BusinessParty,
		RewardID:    in.RewardID,
		Name:        in.Name,
		Description: in.Description,
		TokenCost:   in.TokenCost,
		Category:    in.Category,
		Inventory:   in.Inventory,
		ImageURL:    in.ImageURL,
		Terms:       in.Terms,
		ValidFrom:   time.Now().UTC().Format(time.RFC3339),
		ValidUntil:  nil,
		IsActive:    true,
	}, []string{in.BusinessParty})
	if err != nil {
		return "", fmt.Errorf("create reward: %w", err)
	}
	return result.ContractID, nil
}

// RewardUpdates carries the optional fields of an UpdateReward choice.
// A nil field encodes as the tagged None and leaves the ledger value
// untouched.
type RewardUpdates struct {
	Name        *string `json:"newName,omitempty"`
	Description *string `json:"newDescription,omitempty"`
	TokenCost   *int64  `json:"newTokenCost,omitempty"`
	Inventory   *int64  `json:"newInventory,omitempty"`
	IsActive    *bool   `json:"newIsActive,omitempty"`
}

// UpdateReward exercises UpdateReward on a reward contract.
func (o *Ops) UpdateReward(ctx context.Context, businessParty, rewardContractID string, updates RewardUpdates) (*cantonclient.ExerciseResult, error) {
	argument := map[string]interface{}{
		"newName":        optionalText(updates.Name),
		"newDescription": optionalText(updates.Description),
		"newTokenCost":   optionalInt64(updates.TokenCost),
		"newInventory":   optionalInt64(updates.Inventory),
		"newIsActive":    optionalBool(updates.IsActive),
	}
	result, err := o.canton.Exercise(ctx, TemplateReward, rewardContractID, "UpdateReward", argument, []string{businessParty})
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return result, nil
}

type RedeemRewardInput struct {
	CustomerParty   string `json:"customerParty"`
	TokenContractID string `json:"tokenContractId"`
	RewardID        string `json:"rewardId"`
	RewardName      string `json:"rewardName"`
	TokenCost       int64  `json:"tokenCost"`
}

// RedeemReward exercises RedeemTokens on the customer's balance
// contract. Sufficiency of funds is the ledger's call: a rejection
// comes back as the generic transport error.
func (o *Ops) RedeemReward(ctx context.Context, in RedeemRewardInput) (*cantonclient.ExerciseResult, error) {
	result, err := o.canton.Exercise(ctx, TemplateLoyaltyToken, in.TokenContractID, "RedeemTokens", map[string]interface{}{
		"rewardId":   in.RewardID,
		"rewardName": in.RewardName,
		"cost":       in.TokenCost,
	}, []string{in.CustomerParty})
	if err != nil {
		return nil, fmt.Errorf("redeem tokens: %w", err)
	}
	return result, nil
}

type TransferTokensInput struct {
	CustomerParty   string `json:"customerParty"`
	TokenContractID string `json:"tokenContractId"`
	RecipientParty  string `json:"recipientParty"`
	Amount          int64  `json:"amount"`
}

// TransferTokens exercises TransferTokens on the customer's balance
// contract.
func (o *Ops) TransferTokens(ctx context.Context, in TransferTokensInput) (*cantonclient.ExerciseResult, error) {
	result, err := o.canton.Exercise(ctx, TemplateLoyaltyToken, in.TokenContractID, "TransferTokens", map[string]interface{}{
		"recipient": in.RecipientParty,
		"amount":    in.Amount,
	}, []string{in.CustomerParty})
	if err != nil {
		return nil, fmt.Errorf("transfer tokens: %w", err)
	}
	return result, nil
}

// Tagged optional encoding used by choice arguments: Some carries the
// value, None an empty record.

type taggedOptional struct {
	Tag   string      `json:"tag"`
	Value interface{} `json:"value"`
}

func optionalText(v *string) taggedOptional {
	if v == nil {
		return taggedOptional{Tag: "None", Value: map[string]interface{}{}}
	}
	return taggedOptional{Tag: "Some", Value: *v}
}

func optionalInt64(v *int64) taggedOptional {
	if v == nil {
		return taggedOptional{Tag: "None", Value: map[string]interface{}{}}
	}
	return taggedOptional{Tag: "Some", Value: *v}
}

func optionalBool(v *bool) taggedOptional {
	if v == nil {
		return taggedOptional{Tag: "None", Value: map[string]interface{}{}}
	}
	return taggedOptional{Tag: "Some", Value: *v}
}
