package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

// E2E tests assume the services and a Canton sandbox are running
// locally. Run with E2E=1.
const (
	BusinessServiceURL = "http://localhost:8081"
	WalletServiceURL   = "http://localhost:8082"
)

func TestLoyaltyFlow(t *testing.T) {
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against local services")
	}

	// 1. Register a business, which also creates its loyalty program.
	suffix := time.Now().Unix()
	businessToken, businessParty, programID := registerBusiness(t, fmt.Sprintf("E2E Coffee %d", suffix))
	if programID == "" {
		t.Fatal("registration returned no program contract")
	}

	// 2. Issue tokens to a customer by phone.
	phone := fmt.Sprintf("555%07d", suffix%10000000)
	issueTokens(t, businessToken, programID, phone, 100)

	// 3. Customer opens a wallet session with the same phone.
	customerToken := openSession(t, phone)

	// 4. The balance is visible from the customer side.
	tokens := getTokens(t, customerToken)
	if len(tokens) == 0 {
		t.Fatalf("expected a balance for business %s, got none", businessParty)
	}

	// 5. Create a reward the balance can afford and redeem it.
	rewardContract := createReward(t, businessToken, "Free Pastry", 50)
	redeem(t, customerToken, tokens[0].ContractID, rewardContract, "Free Pastry", 50)
}

type tokenView struct {
	ContractID string `json:"contractId"`
	Balance    int64  `json:"balance"`
}

func registerBusiness(t *testing.T, name string) (token, party, programID string) {
	t.Helper()
	body := postJSON(t, "", BusinessServiceURL+"/business", map[string]interface{}{
		"business_name": name,
		"category":      "coffee_shop",
		"location":      "Test City",
		"email":         fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano()),
		"phone":         "555-0000",
		"program_name":  name + " Club",
		"token_name":    "Bean",
		"token_symbol":  "BEAN",
	}, http.StatusCreated)
	var resp struct {
		Token         string `json:"token"`
		BusinessParty string `json:"business_party"`
		ProgramID     string `json:"program_id"`
	}
	decode(t, body, &resp)
	return resp.Token, resp.BusinessParty, resp.ProgramID
}

func issueTokens(t *testing.T, businessToken, programID, phone string, amount int64) {
	t.Helper()
	postJSON(t, businessToken, BusinessServiceURL+"/tokens/issue", map[string]interface{}{
		"program_contract_id": programID,
		"customer_phone":      phone,
		"amount":              amount,
		"reason":              "e2e purchase",
	}, http.StatusOK)
}

func openSession(t *testing.T, phone string) string {
	t.Helper()
	body := postJSON(t, "", WalletServiceURL+"/auth/session", map[string]interface{}{
		"phone": phone,
	}, http.StatusOK)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, body, &resp)
	return resp.Token
}

func getTokens(t *testing.T, customerToken string) []tokenView {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, WalletServiceURL+"/wallet/tokens", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get tokens: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get tokens failed with status %d", resp.StatusCode)
	}
	var tokens []tokenView
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	return tokens
}

func createReward(t *testing.T, businessToken, name string, cost int64) string {
	t.Helper()
	body := postJSON(t, businessToken, BusinessServiceURL+"/rewards", map[string]interface{}{
		"name":        name,
		"description": "e2e reward",
		"token_cost":  cost,
		"category":    "FreeItem",
		"inventory":   10,
	}, http.StatusCreated)
	var resp struct {
		ContractID string `json:"contract_id"`
	}
	decode(t, body, &resp)
	return resp.ContractID
}

func redeem(t *testing.T, customerToken, tokenContract, rewardContract, rewardName string, cost int64) {
	t.Helper()
	postJSON(t, customerToken, WalletServiceURL+"/wallet/redeem", map[string]interface{}{
		"token_contract_id": tokenContract,
		"reward_id":         rewardContract,
		"reward_name":       rewardName,
		"token_cost":        cost,
	}, http.StatusOK)
}

func postJSON(t *testing.T, bearer, url string, payload interface{}, wantStatus int) []byte {
	t.Helper()
	raw, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s returned %d, want %d: %s", url, resp.StatusCode, wantStatus, buf.String())
	}
	return buf.Bytes()
}

func decode(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
