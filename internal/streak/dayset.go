package streak

import (
	"fmt"
	"math/bits"
	"strings"
	"time"
)

// DaysInWeek is the number of distinct reminder days a habit can have.
const DaysInWeek = 7

// DaySet is an immutable set of weekdays (0 = Sunday .. 6 = Saturday).
// Every mutating method returns a new set and leaves the receiver untouched.
type DaySet struct {
	mask uint8
}

// NewDaySet builds a set from day numbers, rejecting anything outside [0,6].
// Duplicates collapse.
func NewDaySet(days ...int) (DaySet, error) {
	var s DaySet
	for _, d := range days {
		if d < 0 || d >= DaysInWeek {
			return DaySet{}, fmt.Errorf("%w: day %d out of range [0,6]", ErrInvalidInput, d)
		}
		s.mask |= 1 << uint(d)
	}
	return s, nil
}

// DaySetOf builds a set from weekdays.
func DaySetOf(days ...time.Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		s.mask |= 1 << uint(d%DaysInWeek)
	}
	return s
}

// Has reports whether the day is in the set. Out-of-range days are never members.
func (s DaySet) Has(day int) bool {
	if day < 0 || day >= DaysInWeek {
		return false
	}
	return s.mask&(1<<uint(day)) != 0
}

func (s DaySet) With(day int) DaySet {
	if day < 0 || day >= DaysInWeek {
		return s
	}
	return DaySet{mask: s.mask | 1<<uint(day)}
}

func (s DaySet) Without(day int) DaySet {
	if day < 0 || day >= DaysInWeek {
		return s
	}
	return DaySet{mask: s.mask &^ (1 << uint(day))}
}

// Toggle flips membership of a single day.
func (s DaySet) Toggle(day int) DaySet {
	if s.Has(day) {
		return s.Without(day)
	}
	return s.With(day)
}

func (s DaySet) Len() int {
	return bits.OnesCount8(s.mask)
}

func (s DaySet) Empty() bool {
	return s.mask == 0
}

// Max returns the last scheduled day of the week, or -1 for an empty set.
func (s DaySet) Max() int {
	if s.mask == 0 {
		return -1
	}
	return bits.Len8(s.mask) - 1
}

// Days returns the members in ascending order.
func (s DaySet) Days() []int {
	days := make([]int, 0, s.Len())
	for d := 0; d < DaysInWeek; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Weekdays returns the members as time.Weekday values in ascending order.
func (s DaySet) Weekdays() []time.Weekday {
	days := s.Days()
	out := make([]time.Weekday, len(days))
	for i, d := range days {
		out[i] = time.Weekday(d)
	}
	return out
}

func (s DaySet) Equal(other DaySet) bool {
	return s.mask == other.mask
}

// String renders the set as short day names, e.g. "Mon,Wed,Fri".
func (s DaySet) String() string {
	names := make([]string, 0, s.Len())
	for _, wd := range s.Weekdays() {
		names = append(names, wd.String()[:3])
	}
	return strings.Join(names, ",")
}
