package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestViolationsPreserveInsertionOrder(t *testing.T) {
	var violations Violations
	violations.Add("subject", CodeMissing)
	violations.Add("startAt", CodeInconsistent)
	violations.Add("endAt", CodeExceedsDuration)

	if !violations.HasErrors() {
		t.Fatal("expected HasErrors to be true")
	}
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d", len(violations))
	}

	expected := []Violation{
		{Field: "subject", Code: CodeMissing},
		{Field: "startAt", Code: CodeInconsistent},
		{Field: "endAt", Code: CodeExceedsDuration},
	}
	for i, want := range expected {
		if got := violations.Get(i); got != want {
			t.Errorf("violation %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestViolationsError(t *testing.T) {
	var violations Violations
	if violations.HasErrors() {
		t.Error("empty violations should have no errors")
	}
	if violations.Error() != "" {
		t.Errorf("empty violations should render empty string, got %q", violations.Error())
	}

	violations.Add("name", CodeDuplicated)
	msg := violations.Error()
	if !strings.Contains(msg, "1 violation(s)") || !strings.Contains(msg, "name: DUPLICATED") {
		t.Errorf("unexpected error message: %q", msg)
	}
}

func TestInvalidRequestCarriesViolations(t *testing.T) {
	var violations Violations
	violations.Add("startAt", CodeOverlaps)

	appErr := InvalidRequest(violations)
	if appErr.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", appErr.HTTPStatus)
	}
	if appErr.Code != CodeInvalidRequest {
		t.Errorf("expected code %s, got %s", CodeInvalidRequest, appErr.Code)
	}
	if len(appErr.Violations) != 1 || appErr.Violations[0].Code != CodeOverlaps {
		t.Errorf("violations not carried through: %+v", appErr.Violations)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(appErr.ToJSON(), &resp); err != nil {
		t.Fatalf("ToJSON produced invalid JSON: %v", err)
	}
	if len(resp.Violations) != 1 || resp.Violations[0].Field != "startAt" {
		t.Errorf("serialized violations wrong: %+v", resp.Violations)
	}
}

func TestNotFoundWithID(t *testing.T) {
	appErr := NotFoundWithID("Room", "abc123")
	if appErr.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", appErr.HTTPStatus)
	}
	if appErr.Details["id"] != "abc123" {
		t.Errorf("expected id detail, got %+v", appErr.Details)
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Internal("Failed to persist allocation", cause)

	if !errors.Is(appErr, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if !strings.Contains(appErr.Error(), "connection refused") {
		t.Errorf("cause missing from message: %q", appErr.Error())
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("room is being booked")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected AsAppError to return the same *AppError")
	}

	plain := errors.New("boom")
	wrapped := AsAppError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to become internal, got %s", wrapped.Code)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("expected original error to be wrapped")
	}
}
