package store

import (
	"database/sql"
	"errors"
	"sort"
	"testing"

	"github.com/dukerupert/roster/internal/database"
	"github.com/dukerupert/roster/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupMemberTestDB(t *testing.T) (*MemberStore, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	return NewMemberStore(db), db
}

func tagNames(m *model.Member) []string {
	names := make([]string, len(m.Tags))
	for i, tag := range m.Tags {
		names[i] = tag.Name
	}
	sort.Strings(names)
	return names
}

func gameNames(m *model.Member) []string {
	names := make([]string, len(m.Games))
	for i, g := range m.Games {
		names[i] = g.Name
	}
	sort.Strings(names)
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestMemberCreateAndGet(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	m, err := s.Create("Alice", "plays support", []string{"raider", "eu"}, []string{"Valheim"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.Name != "Alice" {
		t.Errorf("name = %q, want %q", m.Name, "Alice")
	}
	if m.Note != "plays support" {
		t.Errorf("note = %q, want %q", m.Note, "plays support")
	}
	if m.Favorite {
		t.Error("new member should not be a favorite")
	}
	if got := tagNames(m); !equalStrings(got, []string{"eu", "raider"}) {
		t.Errorf("tags = %v, want [eu raider]", got)
	}
	if got := gameNames(m); !equalStrings(got, []string{"Valheim"}) {
		t.Errorf("games = %v, want [Valheim]", got)
	}

	got, err := s.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Name != "Alice" {
		t.Fatalf("get by id = %v, want Alice", got)
	}
}

func TestMemberGetByIDNotFound(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent member")
	}
}

func TestMemberCreateReusesExistingLabels(t *testing.T) {
	s, db := setupMemberTestDB(t)

	if _, err := s.Create("Alice", "", []string{"raider"}, []string{"Valheim"}); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := s.Create("Bob", "", []string{"raider", "casual"}, []string{"Valheim"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'raider'`); n != 1 {
		t.Errorf("raider tag rows = %d, want 1", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags`); n != 2 {
		t.Errorf("tag rows = %d, want 2", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM games`); n != 1 {
		t.Errorf("game rows = %d, want 1", n)
	}
}

func TestMemberCreateDuplicateNamesInInput(t *testing.T) {
	s, db := setupMemberTestDB(t)

	m, err := s.Create("Alice", "", []string{"raider", "raider"}, []string{"Valheim", "Valheim"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if len(m.Tags) != 1 {
		t.Errorf("tags = %v, want one tag", tagNames(m))
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM member_games WHERE member_id = ?`, m.ID); n != 1 {
		t.Errorf("member_games rows = %d, want 1", n)
	}
}

func TestMemberTagNamesAreCaseSensitive(t *testing.T) {
	s, db := setupMemberTestDB(t)

	if _, err := s.Create("Alice", "", []string{"Raider"}, nil); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := s.Create("Bob", "", []string{"raider"}, nil); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags`); n != 2 {
		t.Errorf("tag rows = %d, want 2", n)
	}
}

func TestMemberUpdateReplacesLabels(t *testing.T) {
	s, db := setupMemberTestDB(t)

	m, err := s.Create("Alice", "old", []string{"a", "b"}, []string{"G1", "G2"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	updated, err := s.Update(m.ID, "Alicia", "new", []string{"b", "c"}, []string{"G3"})
	if err != nil {
		t.Fatalf("update member: %v", err)
	}
	if updated.Name != "Alicia" || updated.Note != "new" {
		t.Errorf("updated = %q/%q, want Alicia/new", updated.Name, updated.Note)
	}
	if got := tagNames(updated); !equalStrings(got, []string{"b", "c"}) {
		t.Errorf("tags = %v, want [b c]", got)
	}
	if got := gameNames(updated); !equalStrings(got, []string{"G3"}) {
		t.Errorf("games = %v, want [G3]", got)
	}

	// Detached labels stay around as orphans.
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'a'`); n != 1 {
		t.Errorf("orphan tag a rows = %d, want 1", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM member_tags mt JOIN tags t ON t.id = mt.tag_id WHERE t.name = 'a'`); n != 0 {
		t.Errorf("tag a still attached %d times", n)
	}
}

func TestMemberUpdateToEmptySets(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	m, _ := s.Create("Alice", "", []string{"a"}, []string{"G1"})
	updated, err := s.Update(m.ID, "Alice", "", nil, nil)
	if err != nil {
		t.Fatalf("update member: %v", err)
	}
	if len(updated.Tags) != 0 || len(updated.Games) != 0 {
		t.Errorf("tags = %v games = %v, want none", tagNames(updated), gameNames(updated))
	}
}

func TestMemberUpdateNotFound(t *testing.T) {
	s, db := setupMemberTestDB(t)

	_, err := s.Update(42, "Ghost", "", []string{"new-tag"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags`); n != 0 {
		t.Errorf("tag rows = %d, want 0 after aborted update", n)
	}
}

func TestMemberDeleteCascades(t *testing.T) {
	s, db := setupMemberTestDB(t)
	es := NewEventStore(db)

	alice, _ := s.Create("Alice", "", []string{"raider"}, []string{"Valheim"})
	bob, _ := s.Create("Bob", "", []string{"raider"}, []string{"Valheim"})

	game := gameByName(t, db, "Valheim")
	ev, err := es.Create(EventInput{
		Title:  "Boss night",
		Date:   mustDate(t, "2026-03-01"),
		GameID: game,
		Participants: []ParticipantInput{
			{MemberID: alice.ID, Status: "attending"},
			{MemberID: bob.ID, Status: "attending"},
		},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.Delete(alice.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}

	if got, _ := s.GetByID(alice.ID); got != nil {
		t.Error("member still exists after delete")
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM event_participants WHERE member_id = ?`, alice.ID); n != 0 {
		t.Errorf("participant rows for deleted member = %d, want 0", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM event_participants WHERE event_id = ?`, ev.ID); n != 1 {
		t.Errorf("participant rows for event = %d, want 1", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM member_tags WHERE member_id = ?`, alice.ID); n != 0 {
		t.Errorf("member_tags rows = %d, want 0", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'raider'`); n != 1 {
		t.Errorf("raider tag rows = %d, want 1", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM games WHERE name = 'Valheim'`); n != 1 {
		t.Errorf("Valheim game rows = %d, want 1", n)
	}
}

func TestMemberDeleteKeepsOrphanLabels(t *testing.T) {
	s, db := setupMemberTestDB(t)

	m, _ := s.Create("Alice", "", []string{"solo-tag"}, []string{"Solo Game"})
	if err := s.Delete(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'solo-tag'`); n != 1 {
		t.Errorf("orphan tag rows = %d, want 1", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM games WHERE name = 'Solo Game'`); n != 1 {
		t.Errorf("orphan game rows = %d, want 1", n)
	}
}

func TestMemberDeleteNotFound(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	if err := s.Delete(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemberToggleFavoriteTwice(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	m, _ := s.Create("Alice", "", nil, nil)

	toggled, err := s.ToggleFavorite(m.ID)
	if err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if !toggled.Favorite {
		t.Error("expected favorite after first toggle")
	}

	toggled, err = s.ToggleFavorite(m.ID)
	if err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if toggled.Favorite != m.Favorite {
		t.Errorf("favorite = %v, want original %v", toggled.Favorite, m.Favorite)
	}
}

func TestMemberToggleFavoriteNotFound(t *testing.T) {
	s, _ := setupMemberTestDB(t)

	got, err := s.ToggleFavorite(999)
	if err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent member")
	}
}

func TestMemberListByGame(t *testing.T) {
	s, db := setupMemberTestDB(t)

	s.Create("Zed", "", nil, []string{"Valheim"})
	s.Create("Amy", "", nil, []string{"Valheim", "Factorio"})
	s.Create("Bob", "", nil, []string{"Factorio"})

	members, err := s.ListByGame(gameByName(t, db, "Valheim"))
	if err != nil {
		t.Fatalf("list by game: %v", err)
	}
	if got := memberNames(members); !equalStrings(got, []string{"Amy", "Zed"}) {
		t.Errorf("members = %v, want [Amy Zed]", got)
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{" , ,", nil},
	}
	for _, tt := range tests {
		if got := SplitNames(tt.raw); !equalStrings(got, tt.want) {
			t.Errorf("SplitNames(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func memberNames(members []model.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func gameByName(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`SELECT id FROM games WHERE name = ?`, name).Scan(&id); err != nil {
		t.Fatalf("lookup game %q: %v", name, err)
	}
	return id
}
