package session

import (
	"errors"
	"fmt"
	"time"

	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/planview"
)

// ErrLookupNotOffered is returned when the ingredient lookup is requested
// while no completed plan with ingredients exists, or a lookup is running.
var ErrLookupNotOffered = errors.New("ingredient lookup is not available")

// User-facing prefixes for upstream failures.
const (
	planErrorPrefix       = "레시피 생성 중 오류가 발생했습니다"
	ingredientErrorPrefix = "재료 정보 조회 중 오류가 발생했습니다"
)

// Workspace is one visitor's screen: the two round-trips and the view derived
// from the latest completed plan.
type Workspace struct {
	ID        string
	Request   planner.MealRequest
	UpdatedAt time.Time

	Plan        RoundTrip[string]
	Ingredients RoundTrip[[]planner.IngredientInfo]

	result planview.Result
}

// BeginPlan starts a generation for req. Ingredient state from the previous
// plan is discarded so it can never be shown against the new one.
func (w *Workspace) BeginPlan(req planner.MealRequest) Ticket {
	w.Request = req
	w.result = planview.Result{}
	w.Ingredients.Reset()
	return w.Plan.Begin()
}

// CompletePlan applies the outcome of the generation started with t.
// It reports false when t has been superseded.
func (w *Workspace) CompletePlan(t Ticket, text string, err error) bool {
	if err != nil {
		return w.Plan.Fail(t, fmt.Errorf("%s: %w", planErrorPrefix, err))
	}
	if !w.Plan.Succeed(t, text) {
		return false
	}
	w.result = planview.Parse(text)
	return true
}

// Result is the parsed view of the latest successful plan.
func (w *Workspace) Result() (planview.Result, bool) {
	if _, ok := w.Plan.Value(); !ok {
		return planview.Result{}, false
	}
	return w.result, true
}

// LookupOffered reports whether the ingredient lookup can be started.
func (w *Workspace) LookupOffered() bool {
	if _, ok := w.Plan.Value(); !ok {
		return false
	}
	return w.result.OffersIngredientLookup() && !w.Ingredients.Pending()
}

// BeginLookup starts the ingredient lookup and returns the ingredient text to
// send with it.
func (w *Workspace) BeginLookup() (Ticket, string, error) {
	if !w.LookupOffered() {
		return 0, "", ErrLookupNotOffered
	}
	return w.Ingredients.Begin(), w.result.IngredientsText, nil
}

// CompleteLookup applies the outcome of the lookup started with t.
func (w *Workspace) CompleteLookup(t Ticket, info []planner.IngredientInfo, err error) bool {
	if err != nil {
		return w.Ingredients.Fail(t, fmt.Errorf("%s: %w", ingredientErrorPrefix, err))
	}
	return w.Ingredients.Succeed(t, info)
}

// Snapshot is the JSON-friendly copy of a Workspace.
type Snapshot struct {
	Request       planner.MealRequest `json:"request"`
	PlanStatus    Status              `json:"planStatus"`
	PlanError     string              `json:"planError,omitempty"`
	ResponseText  string              `json:"responseText,omitempty"`
	Plan          *planview.Result    `json:"plan,omitempty"`
	LookupOffered bool                `json:"lookupOffered"`

	IngredientStatus Status                   `json:"ingredientStatus"`
	IngredientError  string                   `json:"ingredientError,omitempty"`
	Ingredients      []planner.IngredientInfo `json:"ingredients,omitempty"`
}

// Snapshot copies the current state.
func (w *Workspace) Snapshot() Snapshot {
	s := Snapshot{
		Request:          w.Request,
		PlanStatus:       w.Plan.Status(),
		LookupOffered:    w.LookupOffered(),
		IngredientStatus: w.Ingredients.Status(),
	}
	if err := w.Plan.Err(); err != nil {
		s.PlanError = err.Error()
	}
	if text, ok := w.Plan.Value(); ok {
		result := w.result
		s.ResponseText = text
		s.Plan = &result
	}
	if err := w.Ingredients.Err(); err != nil {
		s.IngredientError = err.Error()
	}
	if info, ok := w.Ingredients.Value(); ok {
		s.Ingredients = append([]planner.IngredientInfo(nil), info...)
	}
	return s
}
