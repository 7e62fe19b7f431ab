package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/cantonclient"
)

// Views derives the customer- and business-facing read models. Pure
// composition over fresh queries: nothing here mutates ledger state and
// nothing is cached.
type Views struct {
	canton   *cantonclient.Client
	metadata *MetadataClient
}

func NewViews(canton *cantonclient.Client, metadata *MetadataClient) *Views {
	return &Views{canton: canton, metadata: metadata}
}

// CustomerToken is one balance joined with business display metadata.
type CustomerToken struct {
	TokenBalancePayload
	ContractID   string `json:"contractId"`
	BusinessName string `json:"businessName"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
}

// CustomerTokens returns all balances held by a customer, decorated
// with registry metadata. A business missing from the registry gets
// placeholder display values rather than failing the view.
func (v *Views) CustomerTokens(ctx context.Context, customerParty string) ([]CustomerToken, error) {
	contracts, err := v.canton.Query(ctx, TemplateLoyaltyToken, map[string]interface{}{
		"customer": customerParty,
	})
	if err != nil {
		return nil, fmt.Errorf("query customer tokens: %w", err)
	}

	businesses, err := v.metadata.Businesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load business metadata: %w", err)
	}
	byParty := make(map[string]BusinessMetadata, len(businesses))
	for _, b := range businesses {
		byParty[b.CantonPartyID] = b
	}

	tokens := make([]CustomerToken, 0, len(contracts))
	for _, contract := range contracts {
		var payload TokenBalancePayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode token balance %s: %w", contract.ContractID, err)
		}
		token := CustomerToken{
			TokenBalancePayload: payload,
			ContractID:          contract.ContractID,
			BusinessName:        unknownBusiness,
			Icon:                categoryIcon("other"),
			Color:               categoryColor("other"),
		}
		if business, ok := byParty[payload.Business]; ok {
			token.BusinessName = business.BusinessName
			token.Icon = categoryIcon(business.Category)
			token.Color = categoryColor(business.Category)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// AvailableReward is one active reward flagged with the customer's
// eligibility.
type AvailableReward struct {
	RewardPayload
	ContractID   string `json:"contractId"`
	BusinessName string `json:"businessName"`
	Icon         string `json:"icon"`
	UserBalance  int64  `json:"userBalance"`
	CanRedeem    bool   `json:"canRedeem"`
}

// AvailableRewards lists all active rewards with the customer's balance
// under each reward's business (zero when none) and an eligibility
// flag. Eligibility is balance >= cost, the same non-strict comparison
// the ledger's RedeemTokens choice applies: the boundary case of an
// exactly sufficient balance is eligible.
func (v *Views) AvailableRewards(ctx context.Context, customerParty string) ([]AvailableReward, error) {
	tokens, err := v.CustomerTokens(ctx, customerParty)
	if err != nil {
		return nil, err
	}
	balanceByBusiness := make(map[string]int64, len(tokens))
	for _, t := range tokens {
		balanceByBusiness[t.Business] = t.Balance
	}

	contracts, err := v.canton.Query(ctx, TemplateReward, map[string]interface{}{
		"isActive": true,
	})
	if err != nil {
		return nil, fmt.Errorf("query active rewards: %w", err)
	}

	businesses, err := v.metadata.Businesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load business metadata: %w", err)
	}
	byParty := make(map[string]BusinessMetadata, len(businesses))
	for _, b := range businesses {
		byParty[b.CantonPartyID] = b
	}

	rewards := make([]AvailableReward, 0, len(contracts))
	for _, contract := range contracts {
		var payload RewardPayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode reward %s: %w", contract.ContractID, err)
		}
		balance := balanceByBusiness[payload.Business]
		reward := AvailableReward{
			RewardPayload: payload,
			ContractID:    contract.ContractID,
			BusinessName:  unknownBusiness,
			Icon:          rewardIcon(payload.Category),
			UserBalance:   balance,
			CanRedeem:     balance >= payload.TokenCost,
		}
		if business, ok := byParty[payload.Business]; ok {
			reward.BusinessName = business.BusinessName
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}

// BusinessStats are the dashboard aggregates for one business.
type BusinessStats struct {
	TotalCustomers    int    `json:"totalCustomers"`
	TotalTokensIssued int64  `json:"totalTokensIssued"`
	TotalRedeemed     int64  `json:"totalRedeemed"`
	ActiveRewards     int    `json:"activeRewards"`
	EngagementRate    string `json:"engagementRate"`
}

// BusinessProgram returns the business's loyalty program, or nil when
// none exists. Program cardinality per business is zero or one; only
// the first match counts.
func (v *Views) BusinessProgram(ctx context.Context, businessParty string) (*cantonclient.Contract, *LoyaltyProgramPayload, error) {
	contracts, err := v.canton.Query(ctx, TemplateLoyaltyProgram, map[string]interface{}{
		"business": businessParty,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("query program: %w", err)
	}
	if len(contracts) == 0 {
		return nil, nil, nil
	}
	var payload LoyaltyProgramPayload
	if err := json.Unmarshal(contracts[0].Payload, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode program %s: %w", contracts[0].ContractID, err)
	}
	return &contracts[0], &payload, nil
}

// BusinessCustomers returns all balance contracts under a business.
func (v *Views) BusinessCustomers(ctx context.Context, businessParty string) ([]cantonclient.Contract, error) {
	return v.canton.Query(ctx, TemplateLoyaltyToken, map[string]interface{}{
		"business": businessParty,
	})
}

// BusinessRewards returns all reward contracts owned by a business.
func (v *Views) BusinessRewards(ctx context.Context, businessParty string) ([]cantonclient.Contract, error) {
	return v.canton.Query(ctx, TemplateReward, map[string]interface{}{
		"business": businessParty,
	})
}

// Stats derives the dashboard aggregates. The three queries are
// independent and issued concurrently; results are combined only after
// all of them resolve. The engagement rate is redeemed/issued as a
// percentage, pinned to "0" when there are no customers or nothing has
// been issued, so a zero denominator never reaches the division.
func (v *Views) Stats(ctx context.Context, businessParty string) (*BusinessStats, error) {
	var (
		program   *LoyaltyProgramPayload
		customers []cantonclient.Contract
		rewards   []cantonclient.Contract
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, payload, err := v.BusinessProgram(gctx, businessParty)
		program = payload
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = v.BusinessCustomers(gctx, businessParty)
		return err
	})
	g.Go(func() error {
		var err error
		rewards, err = v.BusinessRewards(gctx, businessParty)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	distinct := make(map[string]struct{})
	for _, contract := range customers {
		var payload TokenBalancePayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode token balance %s: %w", contract.ContractID, err)
		}
		distinct[payload.Customer] = struct{}{}
	}

	activeRewards := 0
	for _, contract := range rewards {
		var payload RewardPayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode reward %s: %w", contract.ContractID, err)
		}
		if payload.IsActive {
			activeRewards++
		}
	}

	stats := &BusinessStats{
		TotalCustomers: len(distinct),
		ActiveRewards:  activeRewards,
		EngagementRate: "0",
	}
	if program != nil {
		stats.TotalTokensIssued = program.TotalIssued
		stats.TotalRedeemed = program.TotalRedeemed
	}
	if stats.TotalCustomers > 0 && stats.TotalTokensIssued > 0 {
		rate := float64(stats.TotalRedeemed) / float64(stats.TotalTokensIssued) * 100
		stats.EngagementRate = strconv.FormatFloat(rate, 'f', 1, 64)
	}
	return stats, nil
}

// WalletSummary aggregates a customer's holdings across programs.
type WalletSummary struct {
	TotalBalance     int64 `json:"totalBalance"`
	TotalPrograms    int   `json:"totalPrograms"`
	ActiveBusinesses int   `json:"activeBusinesses"`
}

// Summary folds the customer's tokens into wallet-level totals.
func (v *Views) Summary(ctx context.Context, customerParty string) (*WalletSummary, error) {
	tokens, err := v.CustomerTokens(ctx, customerParty)
	if err != nil {
		return nil, err
	}
	summary := &WalletSummary{TotalPrograms: len(tokens)}
	businesses := make(map[string]struct{})
	for _, t := range tokens {
		summary.TotalBalance += t.Balance
		businesses[t.Business] = struct{}{}
	}
	summary.ActiveBusinesses = len(businesses)
	return summary, nil
}
