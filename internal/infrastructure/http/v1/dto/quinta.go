package dto

import (
	"time"

	"quintastock/internal/domain/quinta"
)

// CreateQuintaRequest adds a quinta to the catalog.
type CreateQuintaRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameQuintaRequest changes a quinta name.
type RenameQuintaRequest struct {
	Name string `json:"name" binding:"required"`
}

// QuintaResponse is one catalog entry.
type QuintaResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromQuinta converts a domain quinta to response.
func FromQuinta(q *quinta.Quinta) QuintaResponse {
	return QuintaResponse{
		ID:        q.ID.String(),
		Name:      q.Name,
		IsActive:  q.IsActive,
		Version:   q.Version,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// FromQuintas converts a slice of quintas.
func FromQuintas(quintas []*quinta.Quinta) []QuintaResponse {
	out := make([]QuintaResponse, len(quintas))
	for i, q := range quintas {
		out[i] = FromQuinta(q)
	}
	return out
}
