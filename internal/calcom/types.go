package calcom

// Event is the simplified view of a Cal.com booking presented to the rest of
// the application. Events are constructed per list request and never stored.
type Event struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	AttendeeEmail string `json:"attendee_email"`
	Description   string `json:"description"`
	Location      string `json:"location"`
}

// bookingRecord is the wire shape of a single booking in the Cal.com v1
// list response. Optional fields may be absent; mapping applies defaults.
type bookingRecord struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// bookingsResponse is the envelope of GET /v1/bookings.
type bookingsResponse struct {
	Bookings []bookingRecord `json:"bookings"`
}

// attendeeResponses carries the attendee identity inside a booking request.
type attendeeResponses struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// bookingRequest is the body of POST /v1/bookings, matching the Cal.com v1
// API booking contract.
type bookingRequest struct {
	EventTypeID int               `json:"eventTypeId"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Responses   attendeeResponses `json:"responses"`
	Metadata    map[string]string `json:"metadata"`
	TimeZone    string            `json:"timeZone"`
	Language    string            `json:"language"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
}

// bookingCreated is the subset of the POST response we use.
type bookingCreated struct {
	ID int `json:"id"`
}

// apiError is the error body Cal.com returns on 4xx responses.
type apiError struct {
	Message string `json:"message"`
}
