package mapping

import (
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
)

// ToModelFiscalYear converts a domain FiscalYear (without periods) to a model FiscalYear
func ToModelFiscalYear(d domain.FiscalYear) models.FiscalYear {
	return models.FiscalYear{
		FiscalYearID:            d.FiscalYearID,
		OrganizationID:          d.OrganizationID,
		Year:                    d.Year,
		StartMonth:              d.StartMonth,
		Frequency:               string(d.Frequency),
		YearClosed:              d.YearClosed,
		RetainedEarningsAccount: strPtr(d.RetainedEarningsAccount),
		ClosedBy:                strPtr(d.ClosedBy),
		ClosedAt:                d.ClosedAt,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalYear converts a model FiscalYear and its period rows to a domain FiscalYear
func ToDomainFiscalYear(m models.FiscalYear, periods []models.FiscalPeriod) domain.FiscalYear {
	return domain.FiscalYear{
		FiscalYearID:            m.FiscalYearID,
		OrganizationID:          m.OrganizationID,
		Year:                    m.Year,
		StartMonth:              m.StartMonth,
		Frequency:               domain.PeriodFrequency(m.Frequency),
		Periods:                 ToDomainPeriodSlice(periods),
		YearClosed:              m.YearClosed,
		RetainedEarningsAccount: strVal(m.RetainedEarningsAccount),
		ClosedBy:                strVal(m.ClosedBy),
		ClosedAt:                m.ClosedAt,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPeriod converts a domain Period to a model FiscalPeriod
func ToModelPeriod(fiscalYearID string, d domain.Period) models.FiscalPeriod {
	return models.FiscalPeriod{
		FiscalYearID: fiscalYearID,
		PeriodNumber: d.PeriodNumber,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Status:       string(d.Status),
		ReopenReason: strPtr(d.ReopenReason),
		ClosedBy:     strPtr(d.ClosedBy),
		ClosedAt:     d.ClosedAt,
	}
}

// ToDomainPeriod converts a model FiscalPeriod to a domain Period
func ToDomainPeriod(m models.FiscalPeriod) domain.Period {
	return domain.Period{
		PeriodNumber: m.PeriodNumber,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Status:       domain.PeriodStatus(m.Status),
		ReopenReason: strVal(m.ReopenReason),
		ClosedBy:     strVal(m.ClosedBy),
		ClosedAt:     m.ClosedAt,
	}
}

// ToDomainPeriodSlice converts model FiscalPeriods to domain Periods
func ToDomainPeriodSlice(ms []models.FiscalPeriod) []domain.Period {
	ds := make([]domain.Period, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPeriod(m)
	}
	return ds
}
