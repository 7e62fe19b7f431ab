package cantonclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseResultFixture(t *testing.T) *ExerciseResult {
	t.Helper()
	raw := `{
		"exerciseResult": {"_1": "#10:0", "_2": "#11:0"},
		"events": [
			{"archived": [{"contractId": "#1:0"}]},
			{"created": [
				{"contractId": "#2:0", "payload": {"programName": "Coffee Club", "totalIssued": 0}},
				{"contractId": "#3:0", "payload": {"balance": 25, "customer": "customer-1"}}
			]}
		]
	}`
	var result ExerciseResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))
	return &result
}

func TestFirstCreatedWithField(t *testing.T) {
	result := exerciseResultFixture(t)

	created, ok := result.FirstCreatedWithField("balance")
	require.True(t, ok)
	assert.Equal(t, "#3:0", created.ContractID)
}

func TestFirstCreatedWithFieldNothingMatched(t *testing.T) {
	result := exerciseResultFixture(t)

	_, ok := result.FirstCreatedWithField("inventory")
	assert.False(t, ok)
}

func TestFirstCreatedWithFieldPresentButZero(t *testing.T) {
	result := exerciseResultFixture(t)

	// Presence, not truthiness: totalIssued is 0 but the field exists.
	created, ok := result.FirstCreatedWithField("totalIssued")
	require.True(t, ok)
	assert.Equal(t, "#2:0", created.ContractID)
}

func TestFirstCreatedWhere(t *testing.T) {
	result := exerciseResultFixture(t)

	created, ok := result.FirstCreatedWhere("programName", "Coffee Club")
	require.True(t, ok)
	assert.Equal(t, "#2:0", created.ContractID)

	_, ok = result.FirstCreatedWhere("programName", "Tea Club")
	assert.False(t, ok)
}

func TestResultField(t *testing.T) {
	result := exerciseResultFixture(t)

	assert.Equal(t, "#10:0", result.ResultField("_1"))
	assert.Equal(t, "#11:0", result.ResultField("_2"))
	assert.Equal(t, "", result.ResultField("_3"))
}

func TestMatchingOnEmptyEvents(t *testing.T) {
	result := &ExerciseResult{}

	_, ok := result.FirstCreatedWithField("balance")
	assert.False(t, ok)
	_, ok = result.FirstCreatedWhere("programName", "x")
	assert.False(t, ok)
}
