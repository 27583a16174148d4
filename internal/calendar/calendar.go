// Package calendar expands a start date and block length into the
// consecutive dates a roster must cover, classifying each by weekday.
package calendar

import (
	"time"

	"github.com/clinicrota/oncallgen/internal/schederr"
)

const (
	dateLayout = "2006-01-02"

	// MinDays and MaxDays bound the length of a schedulable block.
	MinDays = 7
	MaxDays = 90
)

// Block is the contiguous range of dates a roster must cover.
type Block struct {
	Start   time.Time
	NumDays int
	Dates   []time.Time

	dateIndex      map[time.Time]int
	weekendIndices []int
	fridayIndices  []int
}

// NewBlock parses startDate ("YYYY-MM-DD") and expands it into numDays
// consecutive calendar dates, classifying each as weekend or Friday.
func NewBlock(startDate string, numDays int) (*Block, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, schederr.Wrap(schederr.InvalidDate, "invalid start date "+startDate, err)
	}
	if numDays < MinDays || numDays > MaxDays {
		return nil, schederr.Newf(schederr.InvalidRange, "num_days %d outside [%d,%d]", numDays, MinDays, MaxDays)
	}

	// Normalize to a timezone-free, DST-free midnight so date arithmetic is
	// pure integer day offsets.
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	b := &Block{
		Start:     start,
		NumDays:   numDays,
		Dates:     make([]time.Time, numDays),
		dateIndex: make(map[time.Time]int, numDays),
	}

	for i := 0; i < numDays; i++ {
		d := start.AddDate(0, 0, i)
		b.Dates[i] = d
		b.dateIndex[d] = i

		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			b.weekendIndices = append(b.weekendIndices, i)
		case time.Friday:
			b.fridayIndices = append(b.fridayIndices, i)
		}
	}

	return b, nil
}

// End returns the last date in the block.
func (b *Block) End() time.Time {
	return b.Dates[b.NumDays-1]
}

// IndexOf returns the block-local index of date, normalized to midnight UTC.
func (b *Block) IndexOf(date time.Time) (int, bool) {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	idx, ok := b.dateIndex[d]
	return idx, ok
}

// WeekendIndices returns the block-local indices falling on Saturday or Sunday.
func (b *Block) WeekendIndices() []int { return b.weekendIndices }

// FridayIndices returns the block-local indices falling on Friday.
func (b *Block) FridayIndices() []int { return b.fridayIndices }

// DateString formats the date at index d as "YYYY-MM-DD".
func (b *Block) DateString(d int) string {
	return b.Dates[d].Format(dateLayout)
}

// ParseDate parses an ISO date string using the same layout as NewBlock,
// returning schederr.InvalidDate on failure.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, schederr.Wrap(schederr.InvalidDate, "invalid date "+s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
