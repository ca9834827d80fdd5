package model

import (
	"strings"
	"time"
)

type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Note      string    `json:"note"`
	Favorite  bool      `json:"favorite"`
	Tags      []Tag     `json:"tags"`
	Games     []Game    `json:"games"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagString joins the member's tag names the way the edit form expects them.
func (m Member) TagString() string {
	names := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

// GameString joins the member's game names the way the edit form expects them.
func (m Member) GameString() string {
	names := make([]string, len(m.Games))
	for i, g := range m.Games {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Game struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
