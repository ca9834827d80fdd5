package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/roster/internal/attendance"
	"github.com/dukerupert/roster/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// ParticipantInput is one selected member and the status picked for them.
type ParticipantInput struct {
	MemberID int64
	Status   string
}

type EventInput struct {
	Title        string
	Date         time.Time
	Description  string
	GameID       int64
	Participants []ParticipantInput
}

const eventCols = `e.id, e.title, e.date, e.description, e.game_id, g.name, e.created_at`

const eventFrom = ` FROM events e JOIN games g ON g.id = e.game_id`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var date string
	if err := scanner.Scan(&e.ID, &e.Title, &date, &e.Description, &e.GameID, &e.GameName, &e.CreatedAt); err != nil {
		return nil, err
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse event date %q: %w", date, err)
	}
	e.Date = d
	return &e, nil
}

func (s *EventStore) queryEvents(query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts the event and one participant row per selected member in a
// single transaction. Statuses are normalized; a member selected twice keeps
// its first status.
func (s *EventStore) Create(in EventInput) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var games int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM games WHERE id = ?`, in.GameID).Scan(&games); err != nil {
		return nil, fmt.Errorf("check game: %w", err)
	}
	if games == 0 {
		return nil, fmt.Errorf("game %d: %w", in.GameID, ErrUnknownGame)
	}

	result, err := tx.Exec(
		`INSERT INTO events (title, date, description, game_id) VALUES (?, ?, ?, ?)`,
		in.Title, in.Date.Format(model.DateLayout), in.Description, in.GameID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	seen := make(map[int64]bool, len(in.Participants))
	for _, p := range in.Participants {
		if seen[p.MemberID] {
			continue
		}
		seen[p.MemberID] = true

		var members int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM members WHERE id = ?`, p.MemberID).Scan(&members); err != nil {
			return nil, fmt.Errorf("check member: %w", err)
		}
		if members == 0 {
			return nil, fmt.Errorf("member %d: %w", p.MemberID, ErrNotFound)
		}

		if _, err := tx.Exec(
			`INSERT INTO event_participants (event_id, member_id, status) VALUES (?, ?, ?)`,
			id, p.MemberID, string(attendance.Normalize(p.Status)),
		); err != nil {
			return nil, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	e, err := scanEvent(s.db.QueryRow(`SELECT `+eventCols+eventFrom+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// List returns events by date, oldest first, optionally limited to one game.
// Events on the same date keep creation order.
func (s *EventStore) List(gameID *int64) ([]model.Event, error) {
	if gameID != nil {
		return s.queryEvents(`SELECT `+eventCols+eventFrom+` WHERE e.game_id = ? ORDER BY e.date ASC, e.id ASC`, *gameID)
	}
	return s.queryEvents(`SELECT ` + eventCols + eventFrom + ` ORDER BY e.date ASC, e.id ASC`)
}

// All returns every event in creation order.
func (s *EventStore) All() ([]model.Event, error) {
	return s.queryEvents(`SELECT ` + eventCols + eventFrom + ` ORDER BY e.id ASC`)
}

// Participants returns the event's attendance rows in the order they were created.
func (s *EventStore) Participants(eventID int64) ([]model.EventParticipant, error) {
	rows, err := s.db.Query(
		`SELECT ep.id, ep.event_id, ep.member_id, ep.status, `+memberCols+`
		 FROM event_participants ep
		 JOIN members m ON m.id = ep.member_id
		 WHERE ep.event_id = ?
		 ORDER BY ep.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participants []model.EventParticipant
	for rows.Next() {
		var p model.EventParticipant
		var favorite int
		if err := rows.Scan(
			&p.ID, &p.EventID, &p.MemberID, &p.Status,
			&p.Member.ID, &p.Member.Name, &p.Member.Note, &favorite, &p.Member.CreatedAt, &p.Member.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Member.Favorite = favorite != 0
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpdateParticipation sets the status of every existing participant from
// statuses, keyed by member id. Members missing from the map, or mapped to an
// unknown value, become undecided. Rows are never added or removed.
func (s *EventStore) UpdateParticipation(eventID int64, statuses map[int64]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var events int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM events WHERE id = ?`, eventID).Scan(&events); err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if events == 0 {
		return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}

	memberIDs, err := participantMemberIDs(tx, eventID)
	if err != nil {
		return err
	}

	for _, memberID := range memberIDs {
		status := attendance.Normalize(statuses[memberID])
		if _, err := tx.Exec(
			`UPDATE event_participants SET status = ? WHERE event_id = ? AND member_id = ?`,
			string(status), eventID, memberID,
		); err != nil {
			return fmt.Errorf("update participant %d: %w", memberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func participantMemberIDs(q querier, eventID int64) ([]int64, error) {
	rows, err := q.Query(`SELECT member_id FROM event_participants WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query participant ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the event and, by cascade, its participant rows.
func (s *EventStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return nil
}
