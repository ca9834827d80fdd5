// Package calendar projects events into the minimal shape consumed by the
// calendar page's client-side renderer.
package calendar

import (
	"encoding/hex"
	"fmt"

	"github.com/dukerupert/roster/internal/model"
	"golang.org/x/crypto/blake2b"
)

// Entry is one event as the calendar widget wants it.
type Entry struct {
	Title string `json:"title"`
	Start string `json:"start"`
	URL   string `json:"url"`
}

// DetailPath is the link to an event's detail page.
func DetailPath(eventID int64) string {
	return fmt.Sprintf("/events/%d", eventID)
}

// Project maps events to feed entries, preserving order.
func Project(events []model.Event) []Entry {
	entries := make([]Entry, 0, len(events))
	for _, e := range events {
		entries = append(entries, Entry{
			Title: e.Title,
			Start: e.ISODate(),
			URL:   DetailPath(e.ID),
		})
	}
	return entries
}

// ETag returns a strong entity tag for an encoded feed body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
