package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/logging"
)

// meetingDuration is the fixed length of every booking created through the
// assistant. The end time is always derived, never supplied by the caller.
const meetingDuration = 30 * time.Minute

// ownerBusyMarker is the substring Cal.com embeds in a 400 response when the
// calendar owner has no availability at the requested slot.
const ownerBusyMarker = "no_available_users_found_error"

// Client wraps the Cal.com v1 booking API.
// All methods perform synchronous outbound HTTP; none retry.
type Client struct {
	baseURL     string
	apiKey      string
	eventTypeID int
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
}

// NewClient creates a Cal.com client. The base URL should not end with a
// slash (e.g. "https://api.cal.com/v1"). If logger is nil, slog.Default()
// is used.
func NewClient(baseURL, apiKey string, eventTypeID int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		eventTypeID: eventTypeID,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need custom transport settings.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetMetrics enables operation metrics. May be left unset.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// recordOperation reports one API operation outcome.
func (c *Client) recordOperation(ctx context.Context, operation string, ok bool, began time.Time) {
	status := instrumentation.StatusSuccess
	if !ok {
		status = instrumentation.StatusError
	}
	c.metrics.RecordCalOperation(ctx, operation, status, time.Since(began))
}

// ListBookings fetches the scheduled bookings for the calendar owner.
// Each remote record maps to exactly one Event; missing optional fields get
// defaults (title "Event", location "TBD", empty description). The attendee
// email on each Event is the supplied owner email: the v1 list endpoint does
// not support attendee filtering, so the owner identity is echoed through.
//
// Unlike a silent empty result, failures are reported to the caller, who
// decides how to phrase them for the user.
func (c *Client) ListBookings(ctx context.Context, ownerEmail string) ([]Event, error) {
	began := time.Now()
	events, err := c.listBookings(ctx, ownerEmail)
	c.recordOperation(ctx, "list_bookings", err == nil, began)
	return events, err
}

func (c *Client) listBookings(ctx context.Context, ownerEmail string) ([]Event, error) {
	logger := logging.WithOperation(c.logger, "list_bookings")

	endpoint := fmt.Sprintf("%s/bookings?%s", c.baseURL, url.Values{"apiKey": {c.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("booking list request failed", logging.Err(err))
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("booking list returned error status", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("failed to fetch bookings: unexpected status %d", resp.StatusCode)
	}

	var body bookingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse bookings response: %w", err)
	}

	events := make([]Event, 0, len(body.Bookings))
	for _, b := range body.Bookings {
		events = append(events, toEvent(b, ownerEmail))
	}

	logger.Debug("fetched bookings", slog.Int("count", len(events)), logging.UserHash(ownerEmail))
	return events, nil
}

// toEvent maps a remote booking record to an Event, applying defaults for
// absent optional fields.
func toEvent(b bookingRecord, ownerEmail string) Event {
	e := Event{
		ID:            b.ID,
		Title:         b.Title,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		AttendeeEmail: ownerEmail,
		Description:   b.Description,
		Location:      b.Location,
	}
	if e.Title == "" {
		e.Title = "Event"
	}
	if e.Location == "" {
		e.Location = "TBD"
	}
	return e
}

// BookEvent creates a 30-minute booking starting at startTime (ISO-8601) with
// the given attendee. It never returns an error: every outcome, success or
// failure, becomes a human-readable confirmation string for the model to
// relay to the user.
func (c *Client) BookEvent(ctx context.Context, startTime, attendeeEmail, title string) string {
	began := time.Now()
	msg := c.bookEvent(ctx, startTime, attendeeEmail, title)
	c.recordOperation(ctx, "book_event", !strings.HasPrefix(msg, "Booking failed"), began)
	return msg
}

func (c *Client) bookEvent(ctx context.Context, startTime, attendeeEmail, title string) string {
	logger := logging.WithOperation(c.logger, "book_event")

	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return "Booking failed: invalid start time format"
	}
	end := start.Add(meetingDuration).Format(time.RFC3339)

	payload := bookingRequest{
		EventTypeID: c.eventTypeID,
		Start:       startTime,
		End:         end,
		Responses: attendeeResponses{
			Name:  attendeeDisplayName(attendeeEmail),
			Email: attendeeEmail,
		},
		Metadata:    map[string]string{},
		TimeZone:    "UTC",
		Language:    "en",
		Title:       title,
		Description: "Booked via API: " + title,
		Status:      "PENDING",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("Booking failed: invalid booking data - %v", err)
	}

	endpoint := fmt.Sprintf("%s/bookings?apiKey=%s", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Booking failed: network error - %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("booking request failed", logging.Err(err))
		return fmt.Sprintf("Booking failed: network error - %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var created bookingCreated
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			logger.Warn("created booking but could not parse response", logging.Err(err))
		}
		logger.Info("booking created",
			slog.Int("booking_id", created.ID),
			logging.Domain(attendeeEmail),
			logging.Status(logging.StatusSuccess))
		return fmt.Sprintf("Event '%s' successfully booked! Booking ID: %d, Start time: %s", title, created.ID, startTime)
	}

	logger.Warn("booking rejected", slog.Int("status_code", resp.StatusCode))
	return bookingFailureMessage(resp)
}

// bookingFailureMessage maps a non-2xx booking response to user-facing text.
// The 400 path has a dedicated case for the owner-busy error: Cal.com checks
// the calendar owner's availability, so the failure must be attributed to
// the owner, never to the attendee.
func bookingFailureMessage(resp *http.Response) string {
	switch resp.StatusCode {
	case http.StatusBadRequest:
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return "Booking failed: bad request"
		}
		if strings.Contains(apiErr.Message, ownerBusyMarker) {
			return "Booking failed: you are not available at this time slot. Please choose a different time when you're free."
		}
		return fmt.Sprintf("Booking failed: %s", apiErr.Message)
	case http.StatusUnauthorized:
		return "Booking failed: invalid API key or unauthorized access"
	case http.StatusNotFound:
		return "Booking failed: event type not found. Check your CAL_EVENT_TYPE_ID"
	default:
		return fmt.Sprintf("Booking failed: HTTP %d", resp.StatusCode)
	}
}

// CancelBooking cancels the booking with the given id. Like BookEvent it
// reports every outcome as a confirmation string. Cancelling an already
// cancelled booking surfaces whatever Cal.com returns (typically 404).
func (c *Client) CancelBooking(ctx context.Context, bookingID int, reason string) string {
	began := time.Now()
	msg := c.cancelBooking(ctx, bookingID, reason)
	c.recordOperation(ctx, "cancel_booking", !strings.HasPrefix(msg, "Cancellation failed"), began)
	return msg
}

func (c *Client) cancelBooking(ctx context.Context, bookingID int, reason string) string {
	logger := logging.WithOperation(c.logger, "cancel_booking")

	query := url.Values{
		"apiKey":             {c.apiKey},
		"cancellationReason": {reason},
	}
	endpoint := fmt.Sprintf("%s/bookings/%d/cancel?%s", c.baseURL, bookingID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("Cancellation failed: network error - %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("cancellation request failed", logging.Err(err))
		return fmt.Sprintf("Cancellation failed: network error - %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusNoContent {
		// Drain so the connection can be reused; the success body is not needed.
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Info("booking cancelled",
			slog.Int("booking_id", bookingID),
			logging.Status(logging.StatusSuccess))
		return fmt.Sprintf("Booking %d successfully cancelled. Reason: %s", bookingID, reason)
	}

	logger.Warn("cancellation rejected",
		slog.Int("booking_id", bookingID),
		slog.Int("status_code", resp.StatusCode))
	return cancellationFailureMessage(resp, bookingID)
}

// cancellationFailureMessage maps a non-2xx cancellation response to
// user-facing text. Unlike the booking mapping, the 400 path has no
// owner-busy special case.
func cancellationFailureMessage(resp *http.Response, bookingID int) string {
	switch resp.StatusCode {
	case http.StatusBadRequest:
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return "Cancellation failed: bad request"
		}
		return fmt.Sprintf("Cancellation failed: %s", apiErr.Message)
	case http.StatusUnauthorized:
		return "Cancellation failed: invalid API key or unauthorized access"
	case http.StatusNotFound:
		return fmt.Sprintf("Cancellation failed: booking %d not found", bookingID)
	default:
		return fmt.Sprintf("Cancellation failed: HTTP %d", resp.StatusCode)
	}
}

// attendeeDisplayName derives a display label from the local part of an
// email address ("john.doe@example.com" -> "John Doe"). It is a fallback
// label only and is never validated against a real identity.
func attendeeDisplayName(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	words := strings.Fields(strings.ReplaceAll(local, ".", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
