package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
)

const subjectInvalidMessage = "Please fill all subject fields correctly."

// SubjectController manages the subject list and the subject selection used
// for faculty assignment.
type SubjectController struct {
	*ListController[models.Subject]
	validator *validator.Validate
}

// NewSubjectController builds the subject list controller.
func NewSubjectController(requester client.Requester, prompter Prompter, validate *validator.Validate, logger *zap.Logger) *SubjectController {
	res := Resource[models.Subject]{
		Name:        "subject",
		Path:        "/api/subjects",
		Placeholder: "No subjects added yet.",
		ID:          func(s models.Subject) models.ID { return s.ID },
		Label:       func(s models.Subject) string { return s.Name },
		Row: func(s models.Subject) dto.ListRow {
			return dto.ListRow{
				Title:  s.Name,
				Detail: fmt.Sprintf("(%s) - %d hrs/week", s.Code, s.HoursPerWeek),
			}
		},
		Option: func(s models.Subject) dto.SelectOption {
			return dto.SelectOption{Value: s.ID.String(), Label: fmt.Sprintf("%s (%s)", s.Name, s.Code)}
		},
		SelectPrompt: "Select Subject",
	}
	return &SubjectController{ListController: NewListController(res, requester, prompter, logger), validator: orDefault(validate)}
}

// Create validates the raw form and adds the subject. Hours must parse to a
// positive integer; uniqueness is left to the backend.
func (c *SubjectController) Create(ctx context.Context, form dto.SubjectForm) error {
	hours, err := strconv.Atoi(strings.TrimSpace(form.HoursPerWeek))
	if err != nil || hours <= 0 {
		return c.alert(subjectInvalidMessage)
	}
	req := dto.CreateSubjectRequest{
		Name:         strings.TrimSpace(form.Name),
		Code:         strings.TrimSpace(form.Code),
		HoursPerWeek: hours,
	}
	if err := c.validator.Struct(req); err != nil {
		return c.alert(subjectInvalidMessage)
	}
	return c.create(ctx, req)
}
