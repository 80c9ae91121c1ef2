package phase

import "time"

// Timings holds every bound and settle delay the phases use.
type Timings struct {
	Poll         time.Duration
	Nudge        time.Duration
	ScrollStep   time.Duration
	Appear       time.Duration
	Short        time.Duration
	Landing      time.Duration
	Frame        time.Duration
	SubmitEnable time.Duration
	Designation  time.Duration
	SaveEnable   time.Duration
	SavePoll     time.Duration

	AfterGoto    time.Duration
	Tick         time.Duration
	Settle       time.Duration
	Grace        time.Duration
	Hydrate      time.Duration
	LoginSettle  time.Duration
	EscapeGap    time.Duration
	ActionSettle time.Duration
	SaveSettle   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Poll:         200 * time.Millisecond,
		Nudge:        150 * time.Millisecond,
		ScrollStep:   120 * time.Millisecond,
		Appear:       15 * time.Second,
		Short:        8 * time.Second,
		Landing:      10 * time.Second,
		Frame:        20 * time.Second,
		SubmitEnable: 6 * time.Second,
		Designation:  15 * time.Second,
		SaveEnable:   10 * time.Second,
		SavePoll:     250 * time.Millisecond,

		AfterGoto:    500 * time.Millisecond,
		Tick:         200 * time.Millisecond,
		Settle:       400 * time.Millisecond,
		Grace:        800 * time.Millisecond,
		Hydrate:      time.Second,
		LoginSettle:  5 * time.Second,
		EscapeGap:    400 * time.Millisecond,
		ActionSettle: 3 * time.Second,
		SaveSettle:   4 * time.Second,
	}
}

// FastTimings keeps the same shape with millisecond bounds, for tests and
// local fixtures.
func FastTimings() Timings {
	return Timings{
		Poll:         2 * time.Millisecond,
		Nudge:        2 * time.Millisecond,
		ScrollStep:   time.Millisecond,
		Appear:       300 * time.Millisecond,
		Short:        200 * time.Millisecond,
		Landing:      200 * time.Millisecond,
		Frame:        300 * time.Millisecond,
		SubmitEnable: 100 * time.Millisecond,
		Designation:  200 * time.Millisecond,
		SaveEnable:   200 * time.Millisecond,
		SavePoll:     2 * time.Millisecond,
	}
}
