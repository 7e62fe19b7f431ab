package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BusinessMetadata decorates a ledger party with human-readable labels.
// It lives in the registry, not on the ledger.
type BusinessMetadata struct {
	CantonPartyID string `json:"cantonPartyId"`
	BusinessName  string `json:"businessName"`
	Category      string `json:"category"`
}

// MetadataClient reads registered businesses from the registry service.
type MetadataClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMetadataClient(baseURL string) *MetadataClient {
	return &MetadataClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Businesses lists all registered businesses.
func (m *MetadataClient) Businesses(ctx context.Context) ([]BusinessMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/businesses", nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registry error: %d - %s", resp.StatusCode, string(text))
	}
	var businesses []BusinessMetadata
	if err := json.NewDecoder(resp.Body).Decode(&businesses); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}
	return businesses, nil
}

const unknownBusiness = "Unknown Business"

var categoryIcons = map[string]string{
	"coffee_shop": "coffee",
	"restaurant":  "restaurant",
	"gym":         "gym",
	"salon":       "salon",
	"retail":      "retail",
	"other":       "gift",
}

var categoryColors = map[string]string{
	"coffee_shop": "from-amber-500 to-orange-600",
	"restaurant":  "from-red-500 to-pink-600",
	"gym":         "from-blue-500 to-cyan-600",
	"salon":       "from-pink-500 to-rose-600",
	"retail":      "from-purple-500 to-indigo-600",
	"other":       "from-gray-500 to-slate-600",
}

var rewardIcons = map[string]string{
	"FreeItem":       "gift",
	"Discount":       "discount",
	"ServiceUpgrade": "star",
	"Experience":     "party",
	"Merchandise":    "shirt",
	"FoodDrink":      "food",
}

func categoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return categoryIcons["other"]
}

func categoryColor(category string) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return categoryColors["other"]
}

func rewardIcon(category string) string {
	if icon, ok := rewardIcons[category]; ok {
		return icon
	}
	return "gift"
}
