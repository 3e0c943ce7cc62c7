package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rotisserie/internal/model"
	"rotisserie/internal/store"
)

func seededStore(t *testing.T, date string) *store.Store {
	t.Helper()
	s, err := store.Open("sqlite", filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	shopID, err := s.GetOrCreateShop(ctx, model.Shop{
		Name: "No5", URL: "https://no5.example/", CanonicalURL: "https://no5.example/", Slug: "no5",
	})
	if err != nil {
		t.Fatalf("shop: %v", err)
	}
	err = s.Unit(ctx, func(u *store.Unit) error {
		girlID, err := u.UpsertGirl(ctx, model.Girl{
			Name: "Momoe", Origin: "j", ShopID: shopID,
			ProfileURL: "https://no5.example/ladies/momoe/",
		})
		if err != nil {
			return err
		}
		return u.UpsertRosterEntry(ctx, model.RosterEntry{
			ShopID: shopID, GirlID: girlID, Date: date,
			ShiftText: "10am - 8pm", SourceURL: "https://no5.example/",
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestToJSON(t *testing.T) {
	const date = "2026-09-01"
	s := seededStore(t, date)
	path := filepath.Join(t.TempDir(), "roster.json")

	if err := ToJSON(context.Background(), s, date, path); err != nil {
		t.Fatalf("to json: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var out model.Export
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Stats.Shops != 1 || out.Stats.Girls != 1 || out.Stats.Entries != 1 {
		t.Fatalf("stats: %+v", out.Stats)
	}
	if len(out.Shops) != 1 || out.Shops[0].Slug != "no5" {
		t.Fatalf("shops: %+v", out.Shops)
	}
	if len(out.Entries) != 1 || out.Entries[0].Date != date || out.Entries[0].ShiftText != "10am - 8pm" {
		t.Fatalf("entries: %+v", out.Entries)
	}
}

func TestToJSON_OtherDateIsEmpty(t *testing.T) {
	s := seededStore(t, "2026-09-01")
	path := filepath.Join(t.TempDir(), "roster.json")

	if err := ToJSON(context.Background(), s, "2026-09-02", path); err != nil {
		t.Fatalf("to json: %v", err)
	}
	var out model.Export
	b, _ := os.ReadFile(path)
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Entries) != 0 {
		t.Fatalf("entries leaked across dates: %+v", out.Entries)
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	recs := []model.Record{{Name: "Momoe", ProfileURL: "https://x/p/momoe"}}
	if err := Snapshot(dir, "no5", recs); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "no5.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got []model.Record
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Momoe" {
		t.Fatalf("snapshot content: %+v", got)
	}
}

func TestSnapshot_EmptyBatchWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	if err := Snapshot(dir, "empty", nil); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var got []model.Record
	b, _ := os.ReadFile(filepath.Join(dir, "empty.json"))
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty array, got %v", got)
	}
}

func TestSnapshot_RequiresSlug(t *testing.T) {
	if err := Snapshot(t.TempDir(), "", nil); err == nil {
		t.Fatalf("expected error for empty slug")
	}
}

func TestBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	in := map[string][]model.Record{
		"no5":   {{Name: "Momoe", ProfileURL: "https://x/p/momoe"}},
		"ginza": {},
	}
	if err := Batches(path, in); err != nil {
		t.Fatalf("batches: %v", err)
	}
	var got map[string][]model.Record
	b, _ := os.ReadFile(path)
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got["no5"][0].Name != "Momoe" {
		t.Fatalf("batches content: %+v", got)
	}
}
