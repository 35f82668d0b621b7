package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJalaliStamp(t *testing.T) {
	s, err := New(Jalali, time.UTC)
	require.NoError(t, err)

	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), "1403/01/01 12:00:00"},
		{time.Date(2024, 3, 19, 23, 59, 59, 0, time.UTC), "1402/12/29 23:59:59"},
		{time.Date(2023, 9, 23, 8, 5, 3, 0, time.UTC), "1402/07/01 08:05:03"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Stamp(tt.in))
		})
	}
	assert.Equal(t, Jalali, s.Calendar())
}

func TestGregorianStamp(t *testing.T) {
	s, err := New("Gregorian", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2024/03/20 12:00:00", s.Stamp(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, Gregorian, s.Calendar())
}

func TestStampUsesLocation(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	s, err := New(Gregorian, tehran)
	require.NoError(t, err)

	assert.Equal(t, "2024/03/20 15:30:00", s.Stamp(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)))
}

func TestNewDefaultsAndErrors(t *testing.T) {
	s, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, Jalali, s.Calendar())

	_, err = New("hebrew", nil)
	assert.Error(t, err)
}
