package model

import "time"

// DateLayout is the calendar-date format used for event dates everywhere.
const DateLayout = "2006-01-02"

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	GameID      int64     `json:"game_id"`
	GameName    string    `json:"game_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ISODate returns the event date as YYYY-MM-DD.
func (e Event) ISODate() string {
	return e.Date.Format(DateLayout)
}

type EventParticipant struct {
	ID       int64  `json:"id"`
	EventID  int64  `json:"event_id"`
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
	Member   Member `json:"member"`
}
