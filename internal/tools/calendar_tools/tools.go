package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/songwd/calassist/internal/calcom"
	"github.com/songwd/calassist/internal/logging"
	"github.com/songwd/calassist/internal/tools"
)

// Tool names as advertised to the model.
const (
	ToolListEvents      = "list_user_events"
	ToolCreateBooking   = "create_calendar_booking"
	ToolCancelBooking   = "cancel_calendar_booking"
	ToolCurrentDatetime = "get_current_datetime"
)

// defaultCancellationReason is used when the model omits a reason.
const defaultCancellationReason = "Meeting cancelled by user"

// CalendarService is the Cal.com surface the tools need. *calcom.Client
// satisfies it.
type CalendarService interface {
	ListBookings(ctx context.Context, ownerEmail string) ([]calcom.Event, error)
	BookEvent(ctx context.Context, startTime, attendeeEmail, title string) string
	CancelBooking(ctx context.Context, bookingID int, reason string) string
}

// Toolset binds the calendar tools to a Cal.com client and the owner's
// calendar identity.
type Toolset struct {
	svc        CalendarService
	ownerEmail string
	now        func() time.Time
	logger     *slog.Logger
}

// NewToolset creates a Toolset. ownerEmail identifies whose calendar the
// tools operate on. If logger is nil, slog.Default() is used.
func NewToolset(svc CalendarService, ownerEmail string, logger *slog.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{
		svc:        svc,
		ownerEmail: ownerEmail,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock overrides the time source. Used by tests.
func (ts *Toolset) SetClock(now func() time.Time) {
	ts.now = now
}

// Register adds the four calendar tools to the registry in a fixed order.
func (ts *Toolset) Register(r *tools.Registry) {
	r.Register(tools.Tool{
		Name:        ToolListEvents,
		Description: listEventsDescription,
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: ts.handleListEvents,
	})

	r.Register(tools.Tool{
		Name:        ToolCreateBooking,
		Description: createBookingDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_time": map[string]any{
					"type":        "string",
					"description": "Meeting start in ISO 8601 format, e.g. \"2025-07-11T14:00:00Z\". Must be in the future.",
				},
				"attendee_email": map[string]any{
					"type":        "string",
					"description": "Email address of the person the user wants to meet with. This is the OTHER party's email, not the user's own.",
				},
				"meeting_title": map[string]any{
					"type":        "string",
					"description": "A descriptive title for the meeting, e.g. \"Project Discussion\" or \"Client Call\".",
				},
			},
			"required": []string{"start_time", "attendee_email", "meeting_title"},
		},
		Handler: ts.handleCreateBooking,
	})

	r.Register(tools.Tool{
		Name:        ToolCancelBooking,
		Description: cancelBookingDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"booking_identifier": map[string]any{
					"type":        "string",
					"description": "The exact numeric booking ID from the calendar, e.g. \"12345\". Obtain it from list_user_events first.",
				},
				"cancellation_reason": map[string]any{
					"type":        "string",
					"description": "Optional reason for cancellation, e.g. \"Schedule conflict\" or \"No longer needed\".",
				},
			},
			"required": []string{"booking_identifier"},
		},
		Handler: ts.handleCancelBooking,
	})

	r.Register(tools.Tool{
		Name:        ToolCurrentDatetime,
		Description: currentDatetimeDescription,
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: ts.handleCurrentDatetime,
	})
}

func (ts *Toolset) handleListEvents(ctx context.Context, args map[string]any) (string, error) {
	events, err := ts.svc.ListBookings(ctx, ts.ownerEmail)
	if err != nil {
		ts.logger.Error("failed to list bookings",
			logging.UserHash(ts.ownerEmail),
			logging.Err(err))
		return "", fmt.Errorf("failed to retrieve scheduled events: %w", err)
	}
	if events == nil {
		events = []calcom.Event{}
	}

	payload, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode events: %w", err)
	}
	return string(payload), nil
}

func (ts *Toolset) handleCreateBooking(ctx context.Context, args map[string]any) (string, error) {
	startTime := stringArg(args, "start_time")
	attendeeEmail := stringArg(args, "attendee_email")
	title := stringArg(args, "meeting_title")

	return ts.svc.BookEvent(ctx, startTime, attendeeEmail, title), nil
}

func (ts *Toolset) handleCancelBooking(ctx context.Context, args map[string]any) (string, error) {
	identifier := identifierArg(args, "booking_identifier")

	bookingID, ok := parseBookingID(identifier)
	if !ok {
		return fmt.Sprintf("Invalid booking ID: '%s'. Please provide a valid numeric booking ID.", identifier), nil
	}

	reason := stringArg(args, "cancellation_reason")
	if reason == "" {
		reason = defaultCancellationReason
	}

	// Verify the booking exists before cancelling, so a hallucinated ID
	// does not reach the API. If the lookup itself fails, proceed and let
	// the cancel call report the outcome.
	if events, err := ts.svc.ListBookings(ctx, ts.ownerEmail); err == nil {
		found := false
		for _, ev := range events {
			if ev.ID == bookingID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("Cancellation failed: booking %d not found", bookingID), nil
		}
	} else {
		ts.logger.Warn("could not verify booking before cancellation",
			slog.Int("booking_id", bookingID),
			logging.Err(err))
	}

	return ts.svc.CancelBooking(ctx, bookingID, reason), nil
}

func (ts *Toolset) handleCurrentDatetime(ctx context.Context, args map[string]any) (string, error) {
	now := ts.now().UTC()

	return fmt.Sprintf(`Current date and time: %s

Formatted: %s
Date only: %s

IMPORTANT: All meeting bookings must be AFTER this current time.
When user says "tomorrow", add 1 day to %s.
When user says "next week", add 7 days to current date.
Always ensure the booking time is in the future!`,
		now.Format(time.RFC3339),
		now.Format("Monday, January 02, 2006 at 03:04 PM UTC"),
		now.Format("2006-01-02"),
		now.Format("2006-01-02")), nil
}

// stringArg returns the named argument as a string, or "".
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// identifierArg returns the named argument as a string. Models send
// booking IDs both as strings and as JSON numbers.
func identifierArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int(v))
	default:
		return ""
	}
}

func parseBookingID(identifier string) (int, bool) {
	if identifier == "" {
		return 0, false
	}
	var id int
	if _, err := fmt.Sscanf(identifier, "%d", &id); err != nil {
		return 0, false
	}
	// Reject trailing garbage such as "123abc".
	if fmt.Sprintf("%d", id) != identifier {
		return 0, false
	}
	return id, true
}
