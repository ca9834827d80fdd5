package attendance

import "github.com/dukerupert/roster/internal/model"

type Status string

const (
	Attending    Status = "attending"
	NotAttending Status = "not attending"
	Undecided    Status = "undecided"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{Attending, NotAttending, Undecided}

// Normalize maps raw input onto the closed status set. Anything unrecognized,
// including the empty string, becomes Undecided.
func Normalize(raw string) Status {
	switch s := Status(raw); s {
	case Attending, NotAttending, Undecided:
		return s
	default:
		return Undecided
	}
}

// Buckets groups the members of one event by attendance status.
type Buckets struct {
	Attending    []model.Member
	NotAttending []model.Member
	Undecided    []model.Member
}

// Bucket partitions participants by status, keeping participant order within
// each bucket. Rows carrying an unknown status land in Undecided.
func Bucket(participants []model.EventParticipant) Buckets {
	var b Buckets
	for _, p := range participants {
		switch Normalize(p.Status) {
		case Attending:
			b.Attending = append(b.Attending, p.Member)
		case NotAttending:
			b.NotAttending = append(b.NotAttending, p.Member)
		default:
			b.Undecided = append(b.Undecided, p.Member)
		}
	}
	return b
}

// Get returns the bucket for a status value.
func (b Buckets) Get(s Status) []model.Member {
	switch Normalize(string(s)) {
	case Attending:
		return b.Attending
	case NotAttending:
		return b.NotAttending
	default:
		return b.Undecided
	}
}

// Total is the number of participants across all buckets.
func (b Buckets) Total() int {
	return len(b.Attending) + len(b.NotAttending) + len(b.Undecided)
}
