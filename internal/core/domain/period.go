package domain

import "time"

// PeriodFrequency determines how many periods a fiscal year contains.
type PeriodFrequency string

const (
	Monthly   PeriodFrequency = "MONTHLY"
	Quarterly PeriodFrequency = "QUARTERLY"
	Yearly    PeriodFrequency = "YEARLY"
)

// PeriodCount returns the number of periods for the frequency.
func (f PeriodFrequency) PeriodCount() int {
	switch f {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Yearly:
		return 1
	}
	return 0
}

// PeriodStatus is the lifecycle state of a single fiscal period.
// The only backward transition is Closed -> Open via an explicit reopen.
type PeriodStatus string

const (
	PeriodNotStarted PeriodStatus = "NOT_STARTED"
	PeriodOpen       PeriodStatus = "OPEN"
	PeriodClosed     PeriodStatus = "CLOSED"
	PeriodLocked     PeriodStatus = "LOCKED"
)

// Period is one sub-period of a fiscal year.
type Period struct {
	PeriodNumber int          `json:"periodNumber"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	Status       PeriodStatus `json:"status"`
	ReopenReason string       `json:"reopenReason,omitempty"`
	ClosedBy     string       `json:"closedBy,omitempty"`
	ClosedAt     *time.Time   `json:"closedAt,omitempty"`
}

// Contains reports whether the date falls inside [StartDate, EndDate].
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// FiscalYear is the per-(organization, year) period state machine gating
// which dates the ledger may post to.
type FiscalYear struct {
	FiscalYearID            string          `json:"fiscalYearID"`
	OrganizationID          string          `json:"organizationID"`
	Year                    int             `json:"year"`
	StartMonth              int             `json:"startMonth"` // 1..12
	Frequency               PeriodFrequency `json:"frequency"`
	Periods                 []Period        `json:"periods"`
	YearClosed              bool            `json:"yearClosed"`
	RetainedEarningsAccount string          `json:"retainedEarningsAccount,omitempty"`
	ClosedBy                string          `json:"closedBy,omitempty"`
	ClosedAt                *time.Time      `json:"closedAt,omitempty"`
	AuditFields
}

// PeriodForDate returns the period containing date, or nil if the date is
// outside the fiscal year's span.
func (fy *FiscalYear) PeriodForDate(date time.Time) *Period {
	for i := range fy.Periods {
		if fy.Periods[i].Contains(date) {
			return &fy.Periods[i]
		}
	}
	return nil
}

// LockedPeriodCount counts periods in Locked status.
func (fy *FiscalYear) LockedPeriodCount() int {
	n := 0
	for _, p := range fy.Periods {
		if p.Status == PeriodLocked {
			n++
		}
	}
	return n
}
