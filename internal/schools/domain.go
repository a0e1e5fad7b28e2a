package schools

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// School is a partner school hosting practicum students.
type School struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NPSN       string    `json:"npsn"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	Headmaster string    `json:"headmaster"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is the writable part of a School. NPSN is the 8-digit national school code.
type Input struct {
	Name       string `json:"name" validate:"required,max=200"`
	NPSN       string `json:"npsn" validate:"required,len=8,numeric"`
	Address    string `json:"address" validate:"max=500"`
	Phone      string `json:"phone" validate:"max=30"`
	Headmaster string `json:"headmaster" validate:"max=200"`
}

func (in Input) normalize() Input {
	in.Name = shared.CleanString(in.Name)
	in.NPSN = shared.CleanString(in.NPSN)
	in.Address = shared.CleanString(in.Address)
	in.Phone = shared.CleanString(in.Phone)
	in.Headmaster = shared.NormalizeName(in.Headmaster)
	return in
}

// ListFilter narrows list results.
type ListFilter struct {
	Search string
	Page   shared.PageRequest
}
