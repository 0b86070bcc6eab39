package photo

import "time"

// Photo is an image attachment owned by a single visit.
type Photo struct {
	ID        int       `json:"id"`
	VisitID   int       `json:"visit_id"`
	FileName  string    `json:"file_name"`
	Content   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
