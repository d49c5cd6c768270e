package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMeetingDayTokenRoundTrip(t *testing.T) {
	patterns := []string{"M", "MW", "TH", "MTWHF", "SU", "UFS", "WHM"}
	for _, days := range patterns {
		formatted := FormatMeeting(days, 900, 1015)
		assert.Equal(t, days, parseDayToken(formatted))
	}
	assert.Equal(t, "", parseDayToken(FormatMeeting("A", 0, 0)))
	assert.Equal(t, "", parseDayToken("MX 9:00AM-10:15AM"))
}
