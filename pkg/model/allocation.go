package model

import "time"

// Employee identifies the booking requester. It is a value object embedded in
// the allocation; requesters are not checked against an employee directory.
type Employee struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Allocation reserves a room for an employee over a half-open interval
// [StartAt, EndAt). Room and employee are immutable after creation; only
// subject and the interval may change through the update path.
type Allocation struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	Employee  Employee  `json:"employee" bson:"employee"`
	Subject   string    `json:"subject" bson:"subject"`
	StartAt   time.Time `json:"start_at" bson:"start_at"`
	EndAt     time.Time `json:"end_at" bson:"end_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Overlaps reports whether two half-open intervals intersect. Touching at a
// boundary is not an overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// CreateAllocationRequest is the proposal for a new allocation. Dates are
// pointers so the validator can distinguish absent from zero; field order
// matters, structural violations are reported in declaration order.
type CreateAllocationRequest struct {
	RoomID        string     `json:"room_id"`
	Subject       string     `json:"subject" validate:"required,max=60"`
	EmployeeName  string     `json:"employee_name" validate:"required,max=50"`
	EmployeeEmail string     `json:"employee_email" validate:"required,max=100"`
	StartAt       *time.Time `json:"start_at" validate:"required"`
	EndAt         *time.Time `json:"end_at" validate:"required"`
}

// UpdateAllocationRequest carries the mutable subset of an allocation.
type UpdateAllocationRequest struct {
	Subject string     `json:"subject" validate:"required,max=60"`
	StartAt *time.Time `json:"start_at" validate:"required"`
	EndAt   *time.Time `json:"end_at" validate:"required"`
}
