package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	roomerrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const (
	FieldName  = "name"
	FieldSeats = "seats"
)

// RoomValidator checks room proposals: structural constraints first, then
// name uniqueness among active rooms. Like its allocation counterpart it
// accumulates violations instead of failing fast.
type RoomValidator struct {
	validate *validator.Validate
	repo     repository.RoomRepository
	log      *logger.Logger
}

func NewRoomValidator(repo repository.RoomRepository, cfg *config.Config) *RoomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RoomValidator{
		validate: v,
		repo:     repo,
		log:      cfg.Log,
	}
}

func (v *RoomValidator) ValidateForCreate(ctx context.Context, proposal *model.CreateRoomRequest) (apperrors.Violations, error) {
	var violations apperrors.Violations

	v.validateStruct(proposal, &violations)
	if violations.HasErrors() {
		return violations, nil
	}

	if err := v.validateNameAvailable(ctx, proposal.Name, "", &violations); err != nil {
		return violations, err
	}
	return violations, nil
}

func (v *RoomValidator) ValidateForUpdate(ctx context.Context, targetID string, proposal *model.UpdateRoomRequest) (apperrors.Violations, error) {
	var violations apperrors.Violations

	if targetID == "" {
		violations.Add("id", apperrors.CodeMissing)
		return violations, nil
	}

	v.validateStruct(proposal, &violations)
	if violations.HasErrors() {
		return violations, nil
	}

	if err := v.validateNameAvailable(ctx, proposal.Name, targetID, &violations); err != nil {
		return violations, err
	}
	return violations, nil
}

func (v *RoomValidator) validateStruct(proposal any, violations *apperrors.Violations) {
	err := v.validate.Struct(proposal)
	if err == nil {
		return
	}

	var structuralErrs validator.ValidationErrors
	if !errors.As(err, &structuralErrs) {
		panic(err)
	}

	for _, fieldErr := range structuralErrs {
		violations.Add(fieldErr.Field(), translateTag(fieldErr))
	}
}

func translateTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return apperrors.CodeMissing
	case "max":
		if fieldErr.Kind() == reflect.String {
			return apperrors.CodeExceedsMaxLength
		}
		return apperrors.CodeAboveMaxValue
	case "min":
		return apperrors.CodeBelowMinValue
	default:
		return apperrors.CodeInconsistent
	}
}

// validateNameAvailable rejects a name already carried by another active
// room. A deactivated room frees its name.
func (v *RoomValidator) validateNameAvailable(ctx context.Context, name, excludeID string, violations *apperrors.Violations) error {
	existing, err := v.repo.FindByNameAndActive(ctx, name)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != excludeID {
		v.log.Debug("Room name already taken", "name", name, "existing_id", existing.ID)
		violations.Add(FieldName, apperrors.CodeDuplicated)
	}
	return nil
}
