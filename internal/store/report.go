package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/roster/internal/model"
)

// RecentLimit is how many members the dashboard lists as recently added.
const RecentLimit = 5

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Dashboard() (*model.Dashboard, error) {
	var d model.Dashboard

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&d.Total); err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	var err error
	if d.TagCounts, err = labelCounts(s.db, tagLabels); err != nil {
		return nil, err
	}
	if d.GameCounts, err = labelCounts(s.db, gameLabels); err != nil {
		return nil, err
	}

	d.Recent, err = queryMembers(s.db,
		`SELECT `+memberCols+` FROM members m ORDER BY m.id DESC LIMIT ?`, RecentLimit)
	if err != nil {
		return nil, err
	}
	if err := withLabels(s.db, d.Recent); err != nil {
		return nil, err
	}

	return &d, nil
}

// labelCounts maps every label name to its member count, zero included.
func labelCounts(q querier, k labelKind) (map[string]int, error) {
	rows, err := q.Query(
		`SELECT l.name, COUNT(j.member_id) FROM ` + k.table + ` l
		 LEFT JOIN ` + k.join + ` j ON j.` + k.fk + ` = l.id
		 GROUP BY l.id, l.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", k.table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", k.table, err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
