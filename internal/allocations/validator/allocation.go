package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"roomly/internal/allocations/repository"
	"roomly/pkg/clock"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// Violation field names, matching the wire format of the request DTOs.
const (
	FieldID            = "id"
	FieldSubject       = "subject"
	FieldEmployeeName  = "employee_name"
	FieldEmployeeEmail = "employee_email"
	FieldStartAt       = "start_at"
	FieldEndAt         = "end_at"
)

// AllocationValidator decides whether a proposed allocation may be created or
// updated. It never fails on invalid input; it reports every violation found
// in one pass and leaves raising to the service. The returned error is
// infrastructure-only (overlap reads hitting the store).
type AllocationValidator struct {
	validate    *validator.Validate
	repo        repository.AllocationRepository
	clock       clock.Clock
	maxDuration time.Duration
	log         *logger.Logger
}

func NewAllocationValidator(repo repository.AllocationRepository, cfg *config.Config) *AllocationValidator {
	v := validator.New()

	// Violations report wire-format field names, not Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AllocationValidator{
		validate:    v,
		repo:        repo,
		clock:       cfg.Clock,
		maxDuration: cfg.AllocationMaxDuration,
		log:         cfg.Log,
	}
}

// ValidateForCreate runs the full check sequence for a new allocation:
// structural checks first (presence, length, in DTO field order, stopping per
// field at the first failure), then the date relationship checks, then the
// room-availability check against the store. The availability read uses the
// caller's context, so inside a transaction it observes transactional state.
func (v *AllocationValidator) ValidateForCreate(ctx context.Context, proposal *model.CreateAllocationRequest) (apperrors.Violations, error) {
	var violations apperrors.Violations

	v.validateStruct(proposal, &violations)

	if proposal.StartAt == nil || proposal.EndAt == nil {
		// The missing-field violations already report the cause; date
		// relationship checks cannot run against absent values.
		return violations, nil
	}

	if err := v.validateDates(ctx, proposal.RoomID, "", *proposal.StartAt, *proposal.EndAt, &violations); err != nil {
		return violations, err
	}

	return violations, nil
}

// ValidateForUpdate mirrors ValidateForCreate for the mutable subset of an
// existing allocation. The target itself is excluded from the overlap
// comparison; employee fields are immutable and therefore unchecked.
func (v *AllocationValidator) ValidateForUpdate(ctx context.Context, target *model.Allocation, proposal *model.UpdateAllocationRequest) (apperrors.Violations, error) {
	var violations apperrors.Violations

	if target == nil || target.ID == "" {
		violations.Add(FieldID, apperrors.CodeMissing)
		return violations, nil
	}

	v.validateStruct(proposal, &violations)

	if proposal.StartAt == nil || proposal.EndAt == nil {
		return violations, nil
	}

	if err := v.validateDates(ctx, target.RoomID, target.ID, *proposal.StartAt, *proposal.EndAt, &violations); err != nil {
		return violations, err
	}

	return violations, nil
}

func (v *AllocationValidator) validateStruct(proposal any, violations *apperrors.Violations) {
	err := v.validate.Struct(proposal)
	if err == nil {
		return
	}

	var structuralErrs validator.ValidationErrors
	if !errors.As(err, &structuralErrs) {
		// Only reachable on a malformed DTO type; treat as a programming
		// error rather than user input.
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

// validateDates applies, in order: ordering, future-only, duration ceiling,
// room availability. The availability read is skipped when any of the
// cheaper date checks already failed.
func (v *AllocationValidator) validateDates(ctx context.Context, roomID, excludeID string, startAt, endAt time.Time, violations *apperrors.Violations) error {
	before := len(*violations)

	if !startAt.Before(endAt) {
		violations.Add(FieldStartAt, apperrors.CodeInconsistent)
	}

	if startAt.Before(v.clock.Now()) {
		violations.Add(FieldStartAt, apperrors.CodeInThePast)
	}

	if endAt.Sub(startAt) > v.maxDuration {
		violations.Add(FieldEndAt, apperrors.CodeExceedsDuration)
	}

	if len(*violations) > before {
		return nil
	}

	return v.validateTimeAvailable(ctx, roomID, excludeID, startAt, endAt, violations)
}

// validateTimeAvailable rejects the proposal when its interval intersects any
// other allocation of the same room. Intervals are half-open, so bookings
// touching at a boundary coexist.
func (v *AllocationValidator) validateTimeAvailable(ctx context.Context, roomID, excludeID string, startAt, endAt time.Time, violations *apperrors.Violations) error {
	existing, err := v.repo.FindOverlapping(ctx, roomID, startAt, endAt)
	if err != nil {
		return err
	}

	for _, allocation := range existing {
		if allocation.ID == excludeID {
			continue
		}
		if model.Overlaps(allocation.StartAt, allocation.EndAt, startAt, endAt) {
			v.log.Debug("Allocation interval conflicts with existing booking",
				"room_id", roomID,
				"existing_id", allocation.ID,
				"existing_start", allocation.StartAt,
				"existing_end", allocation.EndAt,
			)
			violations.Add(FieldStartAt, apperrors.CodeOverlaps)
			return nil
		}
	}

	return nil
}
