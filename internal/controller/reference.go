package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
)

// RoomController manages the room list.
type RoomController struct {
	*ListController[models.Room]
	validator *validator.Validate
}

// NewRoomController builds the room list controller.
func NewRoomController(requester client.Requester, prompter Prompter, validate *validator.Validate, logger *zap.Logger) *RoomController {
	res := Resource[models.Room]{
		Name:        "room",
		Path:        "/api/rooms",
		Placeholder: "No rooms added yet.",
		ID:          func(r models.Room) models.ID { return r.ID },
		Label:       func(r models.Room) string { return r.Name },
		Row:         func(r models.Room) dto.ListRow { return dto.ListRow{Title: r.Name} },
	}
	return &RoomController{ListController: NewListController(res, requester, prompter, logger), validator: orDefault(validate)}
}

// Create adds a room after checking the name is not blank.
func (c *RoomController) Create(ctx context.Context, name string) error {
	req := dto.CreateRoomRequest{Name: strings.TrimSpace(name)}
	if err := c.validator.Struct(req); err != nil {
		return c.alert("Please enter a room name.")
	}
	return c.create(ctx, req)
}

// BatchController manages the batch list.
type BatchController struct {
	*ListController[models.Batch]
	validator *validator.Validate
}

// NewBatchController builds the batch list controller.
func NewBatchController(requester client.Requester, prompter Prompter, validate *validator.Validate, logger *zap.Logger) *BatchController {
	res := Resource[models.Batch]{
		Name:        "batch",
		Path:        "/api/batches",
		Placeholder: "No batches added yet.",
		ID:          func(b models.Batch) models.ID { return b.ID },
		Label:       func(b models.Batch) string { return b.Name },
		Row:         func(b models.Batch) dto.ListRow { return dto.ListRow{Title: b.Name} },
	}
	return &BatchController{ListController: NewListController(res, requester, prompter, logger), validator: orDefault(validate)}
}

// Create adds a batch after checking the name is not blank.
func (c *BatchController) Create(ctx context.Context, name string) error {
	req := dto.CreateBatchRequest{Name: strings.TrimSpace(name)}
	if err := c.validator.Struct(req); err != nil {
		return c.alert("Please enter a batch name.")
	}
	return c.create(ctx, req)
}

func orDefault(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return validator.New()
	}
	return validate
}
