package controller

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
)

const assignInvalidMessage = "Please select both a faculty and a subject."

// FacultyController manages the faculty list, the faculty selection and
// subject assignment.
type FacultyController struct {
	*ListController[models.Faculty]
	validator *validator.Validate

	// clearSubjectSelection resets the subject control owned by the subject
	// controller once an assignment went through.
	clearSubjectSelection func()
}

// NewFacultyController builds the faculty list controller.
func NewFacultyController(requester client.Requester, prompter Prompter, validate *validator.Validate, logger *zap.Logger) *FacultyController {
	res := Resource[models.Faculty]{
		Name:        "faculty",
		Path:        "/api/faculties",
		Placeholder: "No faculty added yet.",
		ID:          func(f models.Faculty) models.ID { return f.ID },
		Label:       func(f models.Faculty) string { return f.Name },
		Row: func(f models.Faculty) dto.ListRow {
			return dto.ListRow{Title: f.Name, Summary: CanTeachSummary(f)}
		},
		Option: func(f models.Faculty) dto.SelectOption {
			return dto.SelectOption{Value: f.ID.String(), Label: f.Name}
		},
		SelectPrompt: "Select Faculty",
	}
	return &FacultyController{ListController: NewListController(res, requester, prompter, logger), validator: orDefault(validate)}
}

// Create adds a faculty member after checking the name is not blank.
func (c *FacultyController) Create(ctx context.Context, name string) error {
	req := dto.CreateFacultyRequest{Name: strings.TrimSpace(name)}
	if err := c.validator.Struct(req); err != nil {
		return c.alert("Please enter a faculty name.")
	}
	return c.create(ctx, req)
}

// Assign links a subject to a faculty member, clears both selections and
// reloads the faculty list so the "can teach" summary is current.
func (c *FacultyController) Assign(ctx context.Context, facultyID, subjectID string) error {
	facultyID = strings.TrimSpace(facultyID)
	req := dto.AssignSubjectRequest{SubjectID: models.ID(strings.TrimSpace(subjectID))}
	if facultyID == "" || c.validator.Struct(req) != nil {
		return c.alert(assignInvalidMessage)
	}

	outcome := c.client.Request(ctx, http.MethodPost, c.res.Path+"/"+url.PathEscape(facultyID)+"/subjects", req)
	if !outcome.OK() {
		return outcome.AsError()
	}

	c.ClearSelection()
	if c.clearSubjectSelection != nil {
		c.clearSubjectSelection()
	}
	return c.Reload(ctx)
}

// CanTeachSummary renders the subject codes a faculty member can teach.
func CanTeachSummary(f models.Faculty) string {
	codes := f.SubjectCodes()
	if len(codes) == 0 {
		return "Can teach: None"
	}
	return "Can teach: " + strings.Join(codes, ", ")
}
