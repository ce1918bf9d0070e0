package dto

import (
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

// InitializeFiscalYearRequest creates the period set for a fiscal year.
type InitializeFiscalYearRequest struct {
	Year       int                    `json:"year" binding:"required"`
	Frequency  domain.PeriodFrequency `json:"frequency" binding:"required,oneof=MONTHLY QUARTERLY YEARLY"`
	StartMonth int                    `json:"startMonth" binding:"required,min=1,max=12"`
}

// ClosePeriodRequest closes one period; Force permits closing a period that
// was never opened.
type ClosePeriodRequest struct {
	Force bool `json:"force"`
}

// ReopenPeriodRequest reopens a Closed period with an audit reason.
type ReopenPeriodRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// YearEndCloseRequest performs the year-end close.
type YearEndCloseRequest struct {
	RetainedEarningsAccountCode string `json:"retainedEarningsAccountCode" binding:"required"`
}

// PeriodResponse mirrors domain.Period.
type PeriodResponse struct {
	PeriodNumber int                 `json:"periodNumber"`
	StartDate    time.Time           `json:"startDate"`
	EndDate      time.Time           `json:"endDate"`
	Status       domain.PeriodStatus `json:"status"`
	ReopenReason string              `json:"reopenReason,omitempty"`
	ClosedBy     string              `json:"closedBy,omitempty"`
	ClosedAt     *time.Time          `json:"closedAt,omitempty"`
}

// FiscalYearResponse defines the data returned for a fiscal year.
type FiscalYearResponse struct {
	FiscalYearID            string                 `json:"fiscalYearID"`
	OrganizationID          string                 `json:"organizationID"`
	Year                    int                    `json:"year"`
	StartMonth              int                    `json:"startMonth"`
	Frequency               domain.PeriodFrequency `json:"frequency"`
	Periods                 []PeriodResponse       `json:"periods"`
	YearClosed              bool                   `json:"yearClosed"`
	LockedPeriods           int                    `json:"lockedPeriods"`
	RetainedEarningsAccount string                 `json:"retainedEarningsAccount,omitempty"`
	ClosedBy                string                 `json:"closedBy,omitempty"`
	ClosedAt                *time.Time             `json:"closedAt,omitempty"`
}

// ToPeriodResponse converts a domain Period to its response DTO.
func ToPeriodResponse(p domain.Period) PeriodResponse {
	return PeriodResponse{
		PeriodNumber: p.PeriodNumber,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       p.Status,
		ReopenReason: p.ReopenReason,
		ClosedBy:     p.ClosedBy,
		ClosedAt:     p.ClosedAt,
	}
}

// ToFiscalYearResponse converts a domain FiscalYear to its response DTO.
func ToFiscalYearResponse(fy *domain.FiscalYear) FiscalYearResponse {
	periods := make([]PeriodResponse, len(fy.Periods))
	for i, p := range fy.Periods {
		periods[i] = ToPeriodResponse(p)
	}
	return FiscalYearResponse{
		FiscalYearID:            fy.FiscalYearID,
		OrganizationID:          fy.OrganizationID,
		Year:                    fy.Year,
		StartMonth:              fy.StartMonth,
		Frequency:               fy.Frequency,
		Periods:                 periods,
		YearClosed:              fy.YearClosed,
		LockedPeriods:           fy.LockedPeriodCount(),
		RetainedEarningsAccount: fy.RetainedEarningsAccount,
		ClosedBy:                fy.ClosedBy,
		ClosedAt:                fy.ClosedAt,
	}
}

// PostableResponse answers whether a date accepts postings.
type PostableResponse struct {
	Date     time.Time `json:"date"`
	Postable bool      `json:"postable"`
	Reason   string    `json:"reason,omitempty"`
}
