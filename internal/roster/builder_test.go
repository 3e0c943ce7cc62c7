package roster

import (
	"testing"

	"rotisserie/internal/model"
)

func TestBuild_NormalizesFields(t *testing.T) {
	rec, ok := Build(model.RawEntry{
		Name:       "J Momoe",
		Shift:      "10am - 8pm",
		ProfileURL: "https://no5marrickville.com/ladies/momoe/",
		Photos:     []string{"https://no5marrickville.com/wp/momoe-300x300.jpg", "https://no5marrickville.com/wp/momoe2.jpg"},
	})
	if !ok {
		t.Fatalf("unexpected reject")
	}
	if rec.Name != "Momoe" || rec.Origin != "j" {
		t.Fatalf("name/code split wrong: %+v", rec)
	}
	if rec.PhotoURL != "https://no5marrickville.com/wp/momoe.jpg" {
		t.Fatalf("primary should be first gallery photo, thumb-stripped: %q", rec.PhotoURL)
	}
	if len(rec.Photos) != 2 {
		t.Fatalf("gallery: %v", rec.Photos)
	}
	if rec.SourceURL != rec.ProfileURL {
		t.Fatalf("source url should default to profile url: %q", rec.SourceURL)
	}
}

func TestBuild_ParenOriginAndTrailingShift(t *testing.T) {
	rec, ok := Build(model.RawEntry{
		Name:       "Juno (Korea) 10am-8pm",
		ProfileURL: "https://sydneygirlmassage.com/juno/",
	})
	if !ok {
		t.Fatalf("unexpected reject")
	}
	if rec.Name != "Juno" || rec.Origin != "k" || rec.Shift != "10am-8pm" {
		t.Fatalf("paren split wrong: %+v", rec)
	}

	// unclassifiable origin stays as opaque free text, never an error
	rec, _ = Build(model.RawEntry{Name: "Zara (Martian)", ProfileURL: "https://x/z"})
	if rec.Origin != "Martian" {
		t.Fatalf("free-text origin lost: %q", rec.Origin)
	}
}

func TestBuild_RejectsWithoutProfileURL(t *testing.T) {
	if _, ok := Build(model.RawEntry{Name: "Momoe", PhotoURL: "p.jpg"}); ok {
		t.Fatalf("record without profile url must be rejected")
	}
	if _, ok := Build(model.RawEntry{Name: "Momoe", ProfileURL: "   "}); ok {
		t.Fatalf("whitespace profile url must be rejected")
	}
}

func TestBuild_ExplicitPrimaryWins(t *testing.T) {
	rec, _ := Build(model.RawEntry{
		Name:       "Anna",
		ProfileURL: "https://x/a",
		PhotoURL:   "main-150x150.png",
		Photos:     []string{"g1.jpg", "g2.jpg"},
	})
	if rec.PhotoURL != "main.png" {
		t.Fatalf("adapter-supplied primary should win: %q", rec.PhotoURL)
	}
}

func TestBuildBatch_DedupAndRejectCount(t *testing.T) {
	raws := []model.RawEntry{
		{Name: "Momoe", Shift: "early", ProfileURL: "https://x/momoe"},
		{Name: "MOMOE", Shift: "late", ProfileURL: "https://x/momoe"}, // dup link
		{Name: "Anna", ProfileURL: ""},                                // rejected
		{Name: "Coco", ProfileURL: "https://x/coco"},
	}
	recs, rejected := BuildBatch(raws)
	if rejected != 1 {
		t.Fatalf("rejected = %d, want 1", rejected)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	// first occurrence wins
	if recs[0].Shift != "early" {
		t.Fatalf("first occurrence should win: %+v", recs[0])
	}
}
