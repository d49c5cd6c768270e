package activity

import "fmt"

// Kind tags the two activity variants.
type Kind int

const (
	KindCourse Kind = iota + 1
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindCourse:
		return "course"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Widths of the display rows returned by ShortFields and LongFields.
const (
	ShortFieldCount = 4
	LongFieldCount  = 7
)

// Activity is anything that can be placed on a schedule. The set of
// implementations is closed: *Course and *Event.
type Activity interface {
	Kind() Kind
	Title() string
	Meeting() Meeting
	MeetingString() string

	// SetTitle and SetMeeting validate before applying; on error the
	// activity is unchanged.
	SetTitle(title string) error
	SetMeeting(days string, start, end int) error

	// CheckConflict returns ErrConflict if the receiver and other meet on a
	// shared day with overlapping times.
	CheckConflict(other Activity) error

	// IsDuplicate applies the variant identity rule: same course name for
	// courses, same title for events, never across variants.
	IsDuplicate(other Activity) bool

	// ShortFields is [name, section, title, meeting].
	ShortFields() []string
	// LongFields is [name, section, title, credits, instructor, meeting, details].
	LongFields() []string
	// Record is the comma-delimited export line.
	Record() string

	Clone() Activity

	validateMeeting(m Meeting) error
}

// base holds the fields shared by every variant.
type base struct {
	title   string
	meeting Meeting
}

func (b *base) Title() string         { return b.title }
func (b *base) Meeting() Meeting      { return b.meeting }
func (b *base) MeetingString() string { return b.meeting.String() }

func (b *base) SetTitle(title string) error {
	if title == "" {
		return ErrInvalidTitle
	}
	b.title = title
	return nil
}

func (b *base) CheckConflict(other Activity) error {
	return CheckConflict(b.meeting, other)
}

// applyMeeting validates m with the variant rule and stores it only on
// success.
func (b *base) applyMeeting(m Meeting, validate func(Meeting) error) error {
	if err := validate(m); err != nil {
		return err
	}
	b.meeting = m
	return nil
}

// CheckConflict compares a meeting against another activity's meeting.
func CheckConflict(m Meeting, other Activity) error {
	if other == nil {
		return nil
	}
	o := other.Meeting()
	if m.Overlaps(o) {
		return fmt.Errorf("%w: %s overlaps %s", ErrConflict, m, o)
	}
	return nil
}

// Equal compares two activities on variant, title, meeting and the
// variant's own fields.
func Equal(a, b Activity) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Title() != b.Title() || a.Meeting() != b.Meeting() {
		return false
	}
	switch av := a.(type) {
	case *Course:
		bv := b.(*Course)
		return av.name == bv.name && av.section == bv.section &&
			av.credits == bv.credits && av.instructorID == bv.instructorID
	case *Event:
		return av.details == b.(*Event).details
	}
	return false
}
