package store

import "strings"

// Sort keys accepted by MemberQuery.
const (
	SortName     = "name"
	SortLatest   = "latest"
	SortOldest   = "oldest"
	SortFavorite = "favorite"
)

// MemberQuery holds the roster list filters. Zero values disable a filter.
type MemberQuery struct {
	Keyword      string
	Tag          string
	Game         string
	FavoriteOnly bool
	Sort         string
}

// orderClauses maps sort keys to ORDER BY clauses. Favorites always come
// first. An unknown key gets no ORDER BY at all.
var orderClauses = map[string]string{
	"":           "m.favorite DESC, m.name ASC, m.id ASC",
	SortName:     "m.favorite DESC, m.name ASC, m.id ASC",
	SortFavorite: "m.favorite DESC, m.name ASC, m.id ASC",
	SortLatest:   "m.favorite DESC, m.id DESC",
	SortOldest:   "m.favorite DESC, m.id ASC",
}

// buildMemberSearch composes the member search SQL. Keyword matching is a
// case-sensitive substring test (instr) against name, note and attached
// tag/game names; tag and game filters are exact. EXISTS keeps each member
// to a single row however many of its labels match.
func buildMemberSearch(q MemberQuery) (string, []any) {
	var where []string
	var args []any

	if q.Keyword != "" {
		where = append(where, `(instr(m.name, ?) > 0
		 OR instr(m.note, ?) > 0
		 OR EXISTS (SELECT 1 FROM member_tags mt JOIN tags t ON t.id = mt.tag_id
		            WHERE mt.member_id = m.id AND instr(t.name, ?) > 0)
		 OR EXISTS (SELECT 1 FROM member_games mg JOIN games g ON g.id = mg.game_id
		            WHERE mg.member_id = m.id AND instr(g.name, ?) > 0))`)
		args = append(args, q.Keyword, q.Keyword, q.Keyword, q.Keyword)
	}

	if q.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM member_tags mt JOIN tags t ON t.id = mt.tag_id
		 WHERE mt.member_id = m.id AND t.name = ?)`)
		args = append(args, q.Tag)
	}

	if q.Game != "" {
		where = append(where, `EXISTS (SELECT 1 FROM member_games mg JOIN games g ON g.id = mg.game_id
		 WHERE mg.member_id = m.id AND g.name = ?)`)
		args = append(args, q.Game)
	}

	if q.FavoriteOnly {
		where = append(where, `m.favorite = 1`)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + memberCols + ` FROM members m`)
	if len(where) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(where, ` AND `))
	}
	if order, ok := orderClauses[q.Sort]; ok {
		b.WriteString(` ORDER BY `)
		b.WriteString(order)
	}
	return b.String(), args
}
