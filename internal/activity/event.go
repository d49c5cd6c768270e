package activity

import "strconv"

// Event is a user-defined calendar entry with free-text details. Events
// always have a concrete meeting; Arranged is rejected.
type Event struct {
	base
	details string
}

func NewEvent(title, days string, start, end int, details string) (*Event, error) {
	e := &Event{details: details}
	if err := e.SetTitle(title); err != nil {
		return nil, err
	}
	if err := e.SetMeeting(days, start, end); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) Kind() Kind      { return KindEvent }
func (e *Event) Details() string { return e.details }

func (e *Event) SetDetails(details string) {
	e.details = details
}

func (e *Event) SetMeeting(days string, start, end int) error {
	return e.applyMeeting(Meeting{Days: days, Start: start, End: end}, e.validateMeeting)
}

func (e *Event) validateMeeting(m Meeting) error {
	return ValidateMeeting(m.Days, m.Start, m.End, EventDays, false)
}

// IsDuplicate reports whether other is an event with the same title.
func (e *Event) IsDuplicate(other Activity) bool {
	oe, ok := other.(*Event)
	return ok && oe.title == e.title
}

func (e *Event) ShortFields() []string {
	return []string{"", "", e.title, e.MeetingString()}
}

func (e *Event) LongFields() []string {
	return []string{"", "", e.title, "", "", e.MeetingString(), e.details}
}

// Record is title,days,start,end,details.
func (e *Event) Record() string {
	return e.title + "," + e.meeting.Days + "," + strconv.Itoa(e.meeting.Start) + "," + strconv.Itoa(e.meeting.End) + "," + e.details
}

func (e *Event) Clone() Activity {
	cp := *e
	return &cp
}

func (e *Event) String() string {
	return e.Record()
}
