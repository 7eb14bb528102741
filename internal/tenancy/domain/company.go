package domain

import "time"

type Company struct {
	ID        string
	Name      string
	Logo      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
