package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/roster/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `m.id, m.name, m.note, m.favorite, m.created_at, m.updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var favorite int
	if err := scanner.Scan(&m.ID, &m.Name, &m.Note, &favorite, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Favorite = favorite != 0
	return &m, nil
}

// queryMembers runs a member select and reads it to completion before
// returning, so the caller can issue follow-up queries on the same connection.
func queryMembers(q querier, query string, args ...any) ([]model.Member, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// Create inserts a member and attaches the named tags and games, creating any
// that do not exist yet.
func (s *MemberStore) Create(name, note string, tagNames, gameNames []string) (*model.Member, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO members (name, note) VALUES (?, ?)`, name, note)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tagLabels.attach(tx, id, tagNames); err != nil {
		return nil, err
	}
	if err := gameLabels.attach(tx, id, gameNames); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	m, err := scanMember(s.db.QueryRow(`SELECT `+memberCols+` FROM members m WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}

	members := []model.Member{*m}
	if err := withLabels(s.db, members); err != nil {
		return nil, err
	}
	return &members[0], nil
}

// Update overwrites name and note and replaces the member's tag and game sets.
func (s *MemberStore) Update(id int64, name, note string, tagNames, gameNames []string) (*model.Member, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE members SET name = ?, note = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, note, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
	}

	for _, k := range []labelKind{tagLabels, gameLabels} {
		if err := k.detachAll(tx, id); err != nil {
			return nil, err
		}
	}
	if err := tagLabels.attach(tx, id, tagNames); err != nil {
		return nil, err
	}
	if err := gameLabels.attach(tx, id, gameNames); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the member. Its attendance rows and tag/game associations go
// with it through foreign-key cascades; the tags and games themselves stay.
func (s *MemberStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	return nil
}

// ToggleFavorite flips the favorite flag. Returns nil if the member does not exist.
func (s *MemberStore) ToggleFavorite(id int64) (*model.Member, error) {
	result, err := s.db.Exec(
		`UPDATE members SET favorite = 1 - favorite, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Search returns the members matching q in the order q.Sort asks for.
func (s *MemberStore) Search(q MemberQuery) ([]model.Member, error) {
	query, args := buildMemberSearch(q)
	members, err := queryMembers(s.db, query, args...)
	if err != nil {
		return nil, err
	}
	if err := withLabels(s.db, members); err != nil {
		return nil, err
	}
	return members, nil
}

// ListByGame returns the members who play the given game, by name.
func (s *MemberStore) ListByGame(gameID int64) ([]model.Member, error) {
	members, err := queryMembers(s.db,
		`SELECT `+memberCols+` FROM members m
		 JOIN member_games mg ON mg.member_id = m.id
		 WHERE mg.game_id = ?
		 ORDER BY m.name, m.id`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	if err := withLabels(s.db, members); err != nil {
		return nil, err
	}
	return members, nil
}
