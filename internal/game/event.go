package game

import (
	"errors"
	"fmt"
)

// ErrEmptyEvent rejects event construction with no moments.
var ErrEmptyEvent = errors.New("event has no moments")

// ErrNonContiguousEvent rejects moment sequences whose frame indices are not
// strictly increasing.
var ErrNonContiguousEvent = errors.New("event moments are not time-contiguous")

// Event is an ordered, time-contiguous sequence of Moments covering one
// possession, with the team context for that span. Immutable once built.
type Event struct {
	ID            int64
	HomeTeamID    int64
	AwayTeamID    int64
	OffensiveSide Side

	moments []Moment
}

// NewEvent validates and constructs an Event. The moment slice is copied so
// later caller mutation cannot reach into the event.
func NewEvent(id int64, moments []Moment, offensiveSide Side, homeTeamID, awayTeamID int64) (*Event, error) {
	if len(moments) == 0 {
		return nil, ErrEmptyEvent
	}
	for i := 1; i < len(moments); i++ {
		prev, cur := moments[i-1].FrameIdx, moments[i].FrameIdx
		if cur == prev {
			return nil, fmt.Errorf("%w: frame %d repeated at index %d",
				ErrNonContiguousEvent, cur, i)
		}
		if cur < prev {
			return nil, fmt.Errorf("%w: frame %d follows frame %d at index %d",
				ErrNonContiguousEvent, cur, prev, i)
		}
	}
	return &Event{
		ID:            id,
		HomeTeamID:    homeTeamID,
		AwayTeamID:    awayTeamID,
		OffensiveSide: offensiveSide,
		moments:       append([]Moment(nil), moments...),
	}, nil
}

// Len returns the number of moments in the event.
func (e *Event) Len() int { return len(e.moments) }

// Moment returns the moment at index i.
func (e *Event) Moment(i int) Moment { return e.moments[i] }

// Moments returns the full moment sequence. The slice header is shared;
// Moments are value objects, so readers cannot disturb the event.
func (e *Event) Moments() []Moment { return e.moments }

// Duration is the event's span in game-clock seconds.
func (e *Event) Duration() float64 {
	if len(e.moments) < 2 {
		return 0
	}
	return e.moments[0].GameClock - e.moments[len(e.moments)-1].GameClock
}
