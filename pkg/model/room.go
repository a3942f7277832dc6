package model

// Room is a bookable meeting room. Name is unique among active rooms;
// deactivation frees the name for reuse.
type Room struct {
	ID     string `json:"id,omitempty" bson:"_id,omitempty"`
	Name   string `json:"name" bson:"name"`
	Seats  int    `json:"seats" bson:"seats"`
	Active bool   `json:"active" bson:"active"`
}

// CreateRoomRequest is the inbound proposal for a new room. Active defaults
// to true when unset.
type CreateRoomRequest struct {
	Name   string `json:"name" validate:"required,max=50"`
	Seats  *int   `json:"seats" validate:"required,min=1,max=200"`
	Active *bool  `json:"active"`
}

type UpdateRoomRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Seats *int   `json:"seats" validate:"required,min=1,max=200"`
}
