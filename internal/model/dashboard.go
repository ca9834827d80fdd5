package model

type Dashboard struct {
	Total      int            `json:"total"`
	TagCounts  map[string]int `json:"tag_counts"`
	GameCounts map[string]int `json:"game_counts"`
	Recent     []Member       `json:"recent"`
}
