package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is returned when a MealRequest is missing required fields.
var ErrInvalidRequest = errors.New("invalid meal request")

// MenuTypes offered by the planner form.
var MenuTypes = []string{"일반식", "채식", "저염식", "다이어트식", "특별식"}

// DaysOfWeek are the school days, Monday first.
var DaysOfWeek = []string{"월요일", "화요일", "수요일", "목요일", "금요일"}

// DefaultNutritionGoals prefills the nutrition field.
const DefaultNutritionGoals = "1식당 칼로리 700kcal 내외, 단백질 30g 이상, 나트륨 800mg 이하"

// Allergens are the allergens school meals must declare.
var Allergens = []string{
	"난류", "우유", "메밀", "땅콩", "대두", "밀", "고등어", "게", "새우", "돼지고기",
	"복숭아", "토마토", "아황산류", "호두", "닭고기", "쇠고기", "오징어", "조개류", "잣",
}

// MealRequest is the finalized planner form. It is treated as immutable once
// submitted.
type MealRequest struct {
	Date                  string   `json:"date" form:"date"`
	Day                   string   `json:"day" form:"day"`
	MenuType              string   `json:"menuType" form:"menuType"`
	IngredientConstraints string   `json:"ingredientConstraints" form:"ingredientConstraints"`
	Allergens             []string `json:"allergens" form:"allergens"`
	NutritionGoals        string   `json:"nutritionGoals" form:"nutritionGoals"`
	PreviousMenus         string   `json:"previousMenus" form:"previousMenus"`
}

// Validate checks the fields the prompt cannot do without.
func (r MealRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(r.Day) == "" {
		missing = append(missing, "day")
	}
	if strings.TrimSpace(r.MenuType) == "" {
		missing = append(missing, "menuType")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// AllergenList renders the selected allergens for the prompt.
func (r MealRequest) AllergenList() string {
	if len(r.Allergens) == 0 {
		return "없음"
	}
	return strings.Join(r.Allergens, ", ")
}

// DefaultRequest is the form's initial value for the given moment. Weekends
// fall back to Monday.
func DefaultRequest(now time.Time) MealRequest {
	day := DaysOfWeek[0]
	if wd := int(now.Weekday()); wd >= 1 && wd <= len(DaysOfWeek) {
		day = DaysOfWeek[wd-1]
	}
	return MealRequest{
		Date:           now.Format("2006-01-02"),
		Day:            day,
		MenuType:       MenuTypes[0],
		NutritionGoals: DefaultNutritionGoals,
	}
}
