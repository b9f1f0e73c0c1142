package handler

import (
	"time"

	"liaison/internal/match/models"
)

// MatchResponse is the anonymized per-owner view of a match. It names only
// the declaration the OWNER submitted; the other party stays invisible.
type MatchResponse struct {
	ID            string    `json:"id"`
	DeclarationID string    `json:"declaration_id"`
	DisplayName   string    `json:"display_name"`
	Score         float64   `json:"score"`
	Seen          bool      `json:"seen"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListResponse wraps the owner's matches.
type ListResponse struct {
	Matches []*MatchResponse `json:"matches"`
}

// UnreadCountResponse reports how many matches the owner has not seen yet.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func toMatchResponses(views []*models.View) []*MatchResponse {
	resp := make([]*MatchResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, &MatchResponse{
			ID:            view.MatchID.String(),
			DeclarationID: view.DeclarationID.String(),
			DisplayName:   view.DisplayName,
			Score:         view.Score,
			Seen:          view.Seen,
			CreatedAt:     view.CreatedAt,
		})
	}
	return resp
}
