package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"school-meal-planner/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

const mondayPlan = `🗓️ 3월 4일 월요일 식단
🍚 잡곡밥
🍲 된장찌개
🥬 배추김치
⚠️ 알레르기 정보: 대두, 밀`

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	first := Entry{SessionID: "s1", Date: "2024-03-04", Day: "월요일", MenuType: "일반식", ResponseText: mondayPlan, Allergens: []string{"대두", "밀"}, CreatedAt: base}
	second := Entry{SessionID: "s2", Date: "2024-03-05", Day: "화요일", MenuType: "채식", ResponseText: "🍚 현미밥", CreatedAt: base.Add(time.Hour)}

	id, err := repo.Save(ctx, first)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == 0 {
		t.Error("Expected a non-zero ID")
	}
	if _, err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("ListRecent", func(t *testing.T) {
		entries, err := repo.ListRecent(ctx, 10)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0].Date != "2024-03-05" {
			t.Errorf("Expected newest first, got %s", entries[0].Date)
		}
		if entries[0].Allergens == nil || len(entries[0].Allergens) != 0 {
			t.Errorf("Expected empty allergen list, got %#v", entries[0].Allergens)
		}
		if !entries[1].CreatedAt.Equal(base) {
			t.Errorf("Expected created_at %v, got %v", base, entries[1].CreatedAt)
		}
	})

	t.Run("ListRecentLimit", func(t *testing.T) {
		entries, err := repo.ListRecent(ctx, 1)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("ListRecentBySession", func(t *testing.T) {
		entries, err := repo.ListRecentBySession(ctx, "s1", 10)
		if err != nil {
			t.Fatalf("ListRecentBySession failed: %v", err)
		}
		if len(entries) != 1 || entries[0].MenuType != "일반식" {
			t.Fatalf("Unexpected entries %+v", entries)
		}
		if len(entries[0].Allergens) != 2 || entries[0].Allergens[1] != "밀" {
			t.Errorf("Unexpected allergens %v", entries[0].Allergens)
		}
	})
}

func TestFormatPreviousMenus(t *testing.T) {
	entries := []Entry{
		{Date: "2024-03-04", Day: "월요일", ResponseText: mondayPlan},
		{Date: "2024-03-05", Day: "화요일", ResponseText: "메뉴 없음"},
		{Date: "2024-03-06", Day: "수요일", ResponseText: "🥗 연두부샐러드"},
	}

	want := "2024-03-04 (월요일): 🍚 잡곡밥, 🍲 된장찌개, 🥬 배추김치\n2024-03-06 (수요일): 🥗 연두부샐러드"
	if got := FormatPreviousMenus(entries); got != want {
		t.Errorf("FormatPreviousMenus() =\n%s\nwant\n%s", got, want)
	}

	if got := FormatPreviousMenus(nil); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}
