// Package history keeps generated meal plans so later requests can avoid
// repeating recent menus.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"school-meal-planner/internal/planview"
)

// Entry is one stored meal plan.
type Entry struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"-"`
	Date         string    `json:"date"`
	Day          string    `json:"day"`
	MenuType     string    `json:"menuType"`
	ResponseText string    `json:"responseText"`
	Allergens    []string  `json:"allergens"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository is a database-backed repository for meal plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new meal plan and returns its ID.
func (r *Repository) Save(ctx context.Context, e Entry) (int64, error) {
	allergens := e.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	allergenJSON, err := json.Marshal(allergens)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal allergens: %w", err)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (session_id, plan_date, day, menu_type, response_text, allergens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Date, e.Day, e.MenuType, e.ResponseText, string(allergenJSON), createdAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return res.LastInsertId()
}

// ListRecent retrieves the N most recent meal plans across all sessions.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, plan_date, day, menu_type, response_text, allergens, created_at
		   FROM meal_plans
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans: %w", err)
	}
	return scanEntries(rows)
}

// ListRecentBySession retrieves the N most recent meal plans of one session.
func (r *Repository) ListRecentBySession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, plan_date, day, menu_type, response_text, allergens, created_at
		   FROM meal_plans
		  WHERE session_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for session %s: %w", sessionID, err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			allergens string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Date, &e.Day, &e.MenuType, &e.ResponseText, &allergens, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		if err := json.Unmarshal([]byte(allergens), &e.Allergens); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allergens of plan %d: %w", e.ID, err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Menus returns the dish lines of the stored plan.
func (e Entry) Menus() []string {
	var menus []string
	for _, l := range planview.SplitLines(e.ResponseText) {
		if l.Kind == planview.KindMenuLabel {
			menus = append(menus, l.Text)
		}
	}
	return menus
}

// FormatPreviousMenus renders entries as the "previous menus" text fed back
// into the generation prompt, one line per plan.
func FormatPreviousMenus(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		menus := e.Menus()
		if len(menus) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s (%s): %s\n", e.Date, e.Day, strings.Join(menus, ", "))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
