package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/roster/internal/model"
)

var (
	// ErrNotFound reports a member or event id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownGame reports an event referencing a game that does not exist.
	ErrUnknownGame = errors.New("unknown game")
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// labelKind describes one of the two name-keyed label tables (tags, games)
// and the association table linking it to members.
type labelKind struct {
	table string
	join  string
	fk    string
}

var (
	tagLabels  = labelKind{table: "tags", join: "member_tags", fk: "tag_id"}
	gameLabels = labelKind{table: "games", join: "member_games", fk: "game_id"}
)

// findOrCreate returns the id of the label with the given name, inserting it
// first if needed. The unique index on name makes the upsert race-free.
func (k labelKind) findOrCreate(q querier, name string) (int64, error) {
	if _, err := q.Exec(`INSERT INTO `+k.table+` (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("upsert %s %q: %w", k.table, name, err)
	}
	var id int64
	if err := q.QueryRow(`SELECT id FROM `+k.table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("select %s %q: %w", k.table, name, err)
	}
	return id, nil
}

// attach links memberID to every named label. Repeated names are harmless.
func (k labelKind) attach(q querier, memberID int64, names []string) error {
	for _, name := range names {
		id, err := k.findOrCreate(q, name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(
			`INSERT OR IGNORE INTO `+k.join+` (member_id, `+k.fk+`) VALUES (?, ?)`,
			memberID, id,
		); err != nil {
			return fmt.Errorf("attach %s: %w", k.table, err)
		}
	}
	return nil
}

func (k labelKind) detachAll(q querier, memberID int64) error {
	if _, err := q.Exec(`DELETE FROM `+k.join+` WHERE member_id = ?`, memberID); err != nil {
		return fmt.Errorf("detach %s: %w", k.table, err)
	}
	return nil
}

// loadFor returns the labels attached to each of the given members, sorted by name.
func (k labelKind) loadFor(q querier, memberIDs []int64) (map[int64][]model.Tag, error) {
	out := make(map[int64][]model.Tag, len(memberIDs))
	if len(memberIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(memberIDs))
	for i, id := range memberIDs {
		args[i] = id
	}
	rows, err := q.Query(
		`SELECT j.member_id, l.id, l.name FROM `+k.join+` j
		 JOIN `+k.table+` l ON l.id = j.`+k.fk+`
		 WHERE j.member_id IN (`+placeholders(len(memberIDs))+`)
		 ORDER BY l.name, l.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", k.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID int64
		var l model.Tag
		if err := rows.Scan(&memberID, &l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", k.table, err)
		}
		out[memberID] = append(out[memberID], l)
	}
	return out, rows.Err()
}

// withLabels fills Tags and Games on each member in place.
func withLabels(q querier, members []model.Member) error {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	tags, err := tagLabels.loadFor(q, ids)
	if err != nil {
		return err
	}
	games, err := gameLabels.loadFor(q, ids)
	if err != nil {
		return err
	}

	for i := range members {
		members[i].Tags = tags[members[i].ID]
		for _, g := range games[members[i].ID] {
			members[i].Games = append(members[i].Games, model.Game(g))
		}
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// SplitNames parses a comma-separated list of tag or game names, trimming
// whitespace and dropping blanks.
func SplitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
