package cantonclient

import (
	"context"
	"encoding/json"
)

// TemplateID names a contract schema as a (module, entity) pair.
type TemplateID struct {
	ModuleName string `json:"moduleName"`
	EntityName string `json:"entityName"`
}

// Contract is one active contract returned by query or fetch. The
// payload stays raw; callers decode it against their template type.
type Contract struct {
	ContractID string          `json:"contractId"`
	Payload    json.RawMessage `json:"payload"`
}

// CreateResult is the ledger's echo of a successful create.
type CreateResult struct {
	ContractID string          `json:"contractId"`
	Payload    json.RawMessage `json:"payload"`
}

// Create submits a new contract of the given template, acting as the
// given parties. Authorization failures surface as a generic *APIError
// like any other ledger rejection.
func (c *Client) Create(ctx context.Context, template TemplateID, payload interface{}, actAs []string) (*CreateResult, error) {
	req := map[string]interface{}{
		"templateId": template,
		"payload":    payload,
		"meta":       map[string]interface{}{"actAs": actAs},
	}
	var result CreateResult
	if err := c.request(ctx, routeCreate, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Exercise executes a choice on a contract and returns the choice's
// declared result plus the contract events it produced.
func (c *Client) Exercise(ctx context.Context, template TemplateID, contractID, choice string, argument interface{}, actAs []string) (*ExerciseResult, error) {
	req := map[string]interface{}{
		"templateId": template,
		"contractId": contractID,
		"choice":     choice,
		"argument":   argument,
		"meta":       map[string]interface{}{"actAs": actAs},
	}
	var result ExerciseResult
	if err := c.request(ctx, routeExercise, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query returns all active contracts of the template matching an
// equality filter over payload fields. No match is an empty slice,
// never an error.
func (c *Client) Query(ctx context.Context, template TemplateID, filter map[string]interface{}) ([]Contract, error) {
	req := map[string]interface{}{
		"templateIds": []TemplateID{template},
	}
	if filter != nil {
		req["query"] = filter
	}
	var resp struct {
		Result []Contract `json:"result"`
	}
	if err := c.request(ctx, routeQuery, req, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return []Contract{}, nil
	}
	return resp.Result, nil
}

// Fetch returns one contract by id, or (nil, nil) when the ledger
// reports no such active contract.
func (c *Client) Fetch(ctx context.Context, template TemplateID, contractID string) (*Contract, error) {
	req := map[string]interface{}{
		"contractId": contractID,
	}
	var resp struct {
		Result *Contract `json:"result"`
	}
	if err := c.request(ctx, routeFetch, req, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}
