// Package calendar renders record creation timestamps.
//
// Records carry their creation time as display text, "yyyy/MM/dd HH:mm:ss",
// in the Jalali (Solar Hijri) calendar by default.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Calendar names
const (
	Jalali    = "jalali"
	Gregorian = "gregorian"
)

// Stamper formats an instant as a record creation date
type Stamper interface {
	Stamp(t time.Time) string
	Calendar() string
}

// New returns the stamper for calendar in loc. A nil loc means time.Local.
func New(calendar string, loc *time.Location) (Stamper, error) {
	if loc == nil {
		loc = time.Local
	}
	switch strings.ToLower(strings.TrimSpace(calendar)) {
	case "", Jalali:
		return JalaliStamper{loc: loc}, nil
	case Gregorian:
		return GregorianStamper{loc: loc}, nil
	default:
		return nil, fmt.Errorf("unsupported calendar %q (want jalali or gregorian)", calendar)
	}
}

// JalaliStamper formats dates in the Solar Hijri calendar
type JalaliStamper struct {
	loc *time.Location
}

func (s JalaliStamper) Stamp(t time.Time) string {
	if s.loc != nil {
		t = t.In(s.loc)
	}
	pt := ptime.New(t)
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d",
		pt.Year(), int(pt.Month()), pt.Day(), t.Hour(), t.Minute(), t.Second())
}

func (JalaliStamper) Calendar() string { return Jalali }

// GregorianStamper formats dates in the Gregorian calendar
type GregorianStamper struct {
	loc *time.Location
}

func (s GregorianStamper) Stamp(t time.Time) string {
	if s.loc != nil {
		t = t.In(s.loc)
	}
	return t.Format("2006/01/02 15:04:05")
}

func (GregorianStamper) Calendar() string { return Gregorian }
