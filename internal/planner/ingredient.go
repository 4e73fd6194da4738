package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SupplyStatus is the market availability reported for an ingredient.
type SupplyStatus string

const (
	StatusPlentiful SupplyStatus = "원활"
	StatusModerate  SupplyStatus = "보통"
	StatusScarce    SupplyStatus = "부족"
)

// Known reports whether s is one of the three documented statuses.
func (s SupplyStatus) Known() bool {
	switch s {
	case StatusPlentiful, StatusModerate, StatusScarce:
		return true
	}
	return false
}

// IngredientInfo is one row of the ingredient supply lookup.
type IngredientInfo struct {
	Name   string       `json:"name"`
	Price  string       `json:"price"`
	Status SupplyStatus `json:"status"`
	Notes  string       `json:"notes"`
}

// parseIngredientInfo decodes the lookup reply. Models answer either with a
// bare array or with an {"ingredients": [...]} object, sometimes inside a
// code fence. Records are returned in the order received.
func parseIngredientInfo(content string) ([]IngredientInfo, error) {
	raw := []byte(stripCodeFence(content))

	var list []IngredientInfo
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Ingredients []IngredientInfo `json:"ingredients"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient info: %w. Response: %s", err, content)
	}
	if wrapped.Ingredients == nil {
		return nil, fmt.Errorf("ingredient info response has no ingredients field. Response: %s", content)
	}
	return wrapped.Ingredients, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
