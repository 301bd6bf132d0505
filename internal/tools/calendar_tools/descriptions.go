package calendar_tools

// Tool descriptions carry the usage policy the model needs to call the
// tools correctly. They are deliberately verbose; the model follows them
// more reliably than the system prompt alone.

const listEventsDescription = `Retrieve all scheduled events from the user's calendar.

Use this tool when the user wants to:
- See their upcoming appointments
- Check their schedule
- View existing bookings
- Ask "what meetings do I have?"

Returns a JSON list of events, each containing:
- id: Unique booking identifier
- title: Event title/name
- start_time: When the event starts (ISO format)
- end_time: When the event ends (ISO format)
- status: Booking status (ACCEPTED, PENDING, etc.)
- attendee_email: Email of the attendee
- description: Event description
- location: Meeting location or video link

Example usage:
- User: "What meetings do I have today?"
- User: "Show me my schedule"
- User: "Do I have any appointments tomorrow?"`

const createBookingDescription = `Book a new appointment in the user's calendar.

Use this tool when the user wants to:
- Schedule a new meeting
- Book an appointment
- Create a calendar event
- Set up a call or meeting

Returns a confirmation message indicating success or failure:
- Success: "Event 'Meeting Title' successfully booked! Booking ID: 12345, Start time: 2025-07-11T14:00:00Z"
- Failure: "Booking failed: [specific error reason]"

Example usage:
- User: "Book a meeting with john@example.com for tomorrow at 2 PM"
- User: "Schedule a call with my client for Friday morning"
- User: "I need to set up a meeting with sarah@company.com next week"

Note: The system automatically creates 30-minute meetings. The end time is calculated automatically.`

const cancelBookingDescription = `Cancel an existing appointment in the user's calendar.

Use this tool when the user wants to:
- Cancel a scheduled meeting
- Remove an appointment
- Delete a booking
- Cancel their "3pm meeting" or similar time-based references

IMPORTANT: To cancel a meeting by time/description, you MUST:
1. FIRST call list_user_events to get the user's schedule
2. Find the specific booking ID that matches the time/description
3. THEN call this function with the exact booking ID

Returns a confirmation message indicating success or failure:
- Success: "Booking 12345 successfully cancelled. Reason: Schedule conflict"
- Failure: "Cancellation failed: [specific error reason]"

Example workflow:
User: "Cancel my 3pm meeting"
1. Call list_user_events() to get all events
2. Look for meeting at 3pm, find it has booking ID "12345"
3. Call cancel_calendar_booking("12345", "User requested cancellation")

Example usage scenarios:
- User: "Cancel my meeting with John tomorrow"
- User: "Remove my 3pm appointment"
- User: "I need to cancel the client call scheduled for Friday"`

const currentDatetimeDescription = `Get the current date and time information.

Use this tool when you need to:
- Check what day/time it is right now
- Calculate future dates for scheduling
- Ensure meetings are booked in the future, not the past

Returns the current date and time in ISO format, plus helpful formatting.`
