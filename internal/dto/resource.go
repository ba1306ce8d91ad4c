package dto

import "github.com/noah-isme/timetable-console/internal/models"

// CreateRoomRequest is the body of POST /api/rooms.
type CreateRoomRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateBatchRequest is the body of POST /api/batches.
type CreateBatchRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateSubjectRequest is the body of POST /api/subjects.
type CreateSubjectRequest struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required"`
	HoursPerWeek int    `json:"hours_per_week" validate:"required,min=1"`
}

// CreateFacultyRequest is the body of POST /api/faculties.
type CreateFacultyRequest struct {
	Name string `json:"name" validate:"required"`
}

// AssignSubjectRequest is the body of POST /api/faculties/{id}/subjects.
type AssignSubjectRequest struct {
	SubjectID models.ID `json:"subject_id" validate:"required"`
}

// SubjectForm holds raw operator input before hours are parsed.
type SubjectForm struct {
	Name         string `form:"name"`
	Code         string `form:"code"`
	HoursPerWeek string `form:"hours_per_week"`
}
