package course

import "time"

const StatusActive = "active"

// FileMeta describes an uploaded course file; the bytes are not retained.
type FileMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Instructor  string    `json:"instructor"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	File        *FileMeta `json:"file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Price is a pointer so an explicit 0 passes "required".
type CreateCourseRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Instructor  string   `json:"instructor" binding:"required,max=120"`
	Description string   `json:"description" binding:"omitempty,max=2000"`
}

func NewFromCreateRequest(id string, req CreateCourseRequest) Course {
	now := time.Now().UTC()

	var price float64
	if req.Price != nil {
		price = *req.Price
	}

	return Course{
		ID:          id,
		Title:       req.Title,
		Price:       price,
		Instructor:  req.Instructor,
		Description: req.Description,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AttachFile is the only mutation a course ever sees.
func (c *Course) AttachFile(meta FileMeta) {
	c.File = &meta
	c.UpdatedAt = meta.UploadedAt
}
