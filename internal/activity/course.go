package activity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	MinCredits = 1
	MaxCredits = 5
)

// courseNamePattern is 1-4 letters, a space, then exactly three digits.
var courseNamePattern = regexp.MustCompile(`^\p{L}{1,4} [0-9]{3}$`)

var structValidator *validator.Validate

func init() {
	structValidator = validator.New()
	structValidator.RegisterValidation("coursename", validateCourseName)
}

func validateCourseName(fl validator.FieldLevel) bool {
	return courseNamePattern.MatchString(fl.Field().String())
}

// courseIdentity carries the course-only fields through the validator.
type courseIdentity struct {
	Name         string `validate:"coursename"`
	Section      string `validate:"len=3,number"`
	Credits      int    `validate:"min=1,max=5"`
	InstructorID string `validate:"required"`
}

// fieldErrors maps a failing struct field to its domain error.
var fieldErrors = map[string]error{
	"Name":         ErrInvalidCourseName,
	"Section":      ErrInvalidSection,
	"Credits":      ErrInvalidCredits,
	"InstructorID": ErrInvalidInstructorID,
}

func (ci courseIdentity) validate() error {
	err := structValidator.Struct(ci)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if mapped, ok := fieldErrors[verrs[0].StructField()]; ok {
			return fmt.Errorf("%w: %q", mapped, fmt.Sprint(verrs[0].Value()))
		}
	}
	return err
}

// Course is a catalog course placed on a schedule.
type Course struct {
	base
	name         string
	section      string
	credits      int
	instructorID string
}

// NewCourse builds a validated course. Use days == Arranged with zero times
// for a course without a fixed meeting.
func NewCourse(name, title, section string, credits int, instructorID, days string, start, end int) (*Course, error) {
	c := &Course{}
	if err := c.SetTitle(title); err != nil {
		return nil, err
	}
	if err := c.SetMeeting(days, start, end); err != nil {
		return nil, err
	}

	ci := courseIdentity{Name: name, Section: section, Credits: credits, InstructorID: instructorID}
	if err := ci.validate(); err != nil {
		return nil, err
	}
	c.name = name
	c.section = section
	c.credits = credits
	c.instructorID = instructorID
	return c, nil
}

// NewArrangedCourse builds a course with no fixed meeting time.
func NewArrangedCourse(name, title, section string, credits int, instructorID string) (*Course, error) {
	return NewCourse(name, title, section, credits, instructorID, Arranged, 0, 0)
}

func (c *Course) Kind() Kind           { return KindCourse }
func (c *Course) Name() string         { return c.name }
func (c *Course) Section() string      { return c.section }
func (c *Course) Credits() int         { return c.credits }
func (c *Course) InstructorID() string { return c.instructorID }

func (c *Course) SetMeeting(days string, start, end int) error {
	return c.applyMeeting(Meeting{Days: days, Start: start, End: end}, c.validateMeeting)
}

func (c *Course) validateMeeting(m Meeting) error {
	return ValidateMeeting(m.Days, m.Start, m.End, CourseDays, true)
}

// IsDuplicate reports whether other is a course with the same name. The
// section is not compared.
func (c *Course) IsDuplicate(other Activity) bool {
	oc, ok := other.(*Course)
	return ok && oc.name == c.name
}

func (c *Course) ShortFields() []string {
	return []string{c.name, c.section, c.title, c.MeetingString()}
}

func (c *Course) LongFields() []string {
	return []string{c.name, c.section, c.title, strconv.Itoa(c.credits), c.instructorID, c.MeetingString(), ""}
}

// Record is name,title,section,credits,instructorId,days[,start,end]. The
// times are omitted for arranged courses.
func (c *Course) Record() string {
	rec := c.name + "," + c.title + "," + c.section + "," + strconv.Itoa(c.credits) + "," + c.instructorID + "," + c.meeting.Days
	if c.meeting.IsArranged() {
		return rec
	}
	return rec + "," + strconv.Itoa(c.meeting.Start) + "," + strconv.Itoa(c.meeting.End)
}

func (c *Course) Clone() Activity {
	cp := *c
	return &cp
}

// Key identifies the course within a catalog.
func (c *Course) Key() CourseKey {
	return CourseKey{Name: c.name, Section: c.section}
}

func (c *Course) String() string {
	return c.Record()
}

// CourseKey is the catalog lookup key.
type CourseKey struct {
	Name    string
	Section string
}
