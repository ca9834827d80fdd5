package store

import (
	"fmt"
	"testing"
)

func TestDashboardEmpty(t *testing.T) {
	db := setupDB(t)

	d, err := NewReportStore(db).Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Total != 0 {
		t.Errorf("total = %d, want 0", d.Total)
	}
	if len(d.TagCounts) != 0 || len(d.GameCounts) != 0 || len(d.Recent) != 0 {
		t.Errorf("dashboard = %+v, want empty", d)
	}
}

func TestDashboardCounts(t *testing.T) {
	db := setupDB(t)
	ms := NewMemberStore(db)
	rs := NewReportStore(db)

	ms.Create("Ann", "", []string{"raider", "eu"}, []string{"Valheim"})
	ms.Create("Bob", "", []string{"raider"}, []string{"Valheim", "Factorio"})
	cid, _ := ms.Create("Cid", "", []string{"lonely"}, nil)

	// Cid drops the tag; it stays with zero members.
	if _, err := ms.Update(cid.ID, "Cid", "", nil, nil); err != nil {
		t.Fatalf("update cid: %v", err)
	}

	d, err := rs.Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Total != 3 {
		t.Errorf("total = %d, want 3", d.Total)
	}

	wantTags := map[string]int{"raider": 2, "eu": 1, "lonely": 0}
	if len(d.TagCounts) != len(wantTags) {
		t.Errorf("tag counts = %v, want %v", d.TagCounts, wantTags)
	}
	for name, want := range wantTags {
		if got, ok := d.TagCounts[name]; !ok || got != want {
			t.Errorf("tag %q count = %d (present %v), want %d", name, got, ok, want)
		}
	}

	wantGames := map[string]int{"Valheim": 2, "Factorio": 1}
	for name, want := range wantGames {
		if got := d.GameCounts[name]; got != want {
			t.Errorf("game %q count = %d, want %d", name, got, want)
		}
	}
}

func TestDashboardRecentMembers(t *testing.T) {
	db := setupDB(t)
	ms := NewMemberStore(db)

	for i := 1; i <= 7; i++ {
		if _, err := ms.Create(fmt.Sprintf("m%d", i), "", nil, nil); err != nil {
			t.Fatalf("create member: %v", err)
		}
	}

	d, err := NewReportStore(db).Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	want := []string{"m7", "m6", "m5", "m4", "m3"}
	if got := memberNames(d.Recent); !equalStrings(got, want) {
		t.Errorf("recent = %v, want %v", got, want)
	}
}

func TestDashboardCountsMatchAttachments(t *testing.T) {
	db := setupDB(t)
	ms := NewMemberStore(db)

	ms.Create("Ann", "", []string{"a", "b"}, []string{"G"})
	ms.Create("Bob", "", []string{"b"}, nil)
	dee, _ := ms.Create("Dee", "", []string{"a"}, []string{"G"})
	ms.Delete(dee.ID)

	d, err := NewReportStore(db).Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for name, got := range d.TagCounts {
		want := countRows(t, db,
			`SELECT COUNT(*) FROM member_tags mt JOIN tags t ON t.id = mt.tag_id WHERE t.name = ?`, name)
		if got != want {
			t.Errorf("tag %q count = %d, want %d", name, got, want)
		}
	}
	if d.TagCounts["a"] != 1 || d.TagCounts["b"] != 2 || d.GameCounts["G"] != 1 {
		t.Errorf("counts = %v / %v, want a:1 b:2 G:1", d.TagCounts, d.GameCounts)
	}
}
