package handler

import (
	"time"

	"liaison/internal/declaration/models"
)

// DeclarationResponse is the owner-facing view of one declaration.
type DeclarationResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Country   string    `json:"country"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitResponse reports the stored declaration and the number of matches
// the submission produced immediately.
type SubmitResponse struct {
	Declaration *DeclarationResponse `json:"declaration"`
	NewMatches  int                  `json:"new_matches"`
}

// ListResponse wraps the owner's declarations.
type ListResponse struct {
	Declarations []*DeclarationResponse `json:"declarations"`
}

func toDeclarationResponse(declaration *models.Declaration) *DeclarationResponse {
	return &DeclarationResponse{
		ID:        declaration.ID.String(),
		FirstName: declaration.FirstName,
		LastName:  declaration.LastName,
		Country:   declaration.Country,
		Active:    declaration.Active,
		CreatedAt: declaration.CreatedAt,
	}
}

func toDeclarationResponses(declarations []*models.Declaration) []*DeclarationResponse {
	resp := make([]*DeclarationResponse, 0, len(declarations))
	for _, declaration := range declarations {
		resp = append(resp, toDeclarationResponse(declaration))
	}
	return resp
}
