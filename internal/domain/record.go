package domain

import "time"

// Record carries the fields every persisted entity shares.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch updates the modification timestamp. Call before persisting changes.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both timestamps for a newly created entity.
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

func (r *Record) GetID() string {
	return r.ID
}
