/*
Package report renders leave statements.

PURPOSE:
  Produces a printable PDF statement for one employee: the balance
  snapshot followed by the monthly apportionment, most recent month first.
  Data-quality issues are listed at the end so HR can fix the records.

LAYOUT:
  Leave Statement
  Employee / join date / as-of date
  Balance table   (accrued, taken, pending, remaining, YTD, next accrual)
  Monthly table   (month, total, approved, pending, rejected)
  By type         (month, leave type, days, requests)
  Issues          (request ID + reason), only when present

SEE ALSO:
  - leave/balance.go: LeaveBalance
  - leave/apportion.go: Apportionment
*/
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 7.0
)

// RenderLeaveReport writes a PDF leave report for emp to w.
func RenderLeaveReport(w io.Writer, emp leave.Employee, bal leave.LeaveBalance, months leave.Apportionment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Leave Statement - %s", emp.Name), true)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.Cell(40, 10, "Leave Statement")
	pdf.Ln(12)

	pdf.SetFont(fontFamily, "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", emp.Name, emp.ID))
	pdf.Ln(lineHeight)
	if emp.Email != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Email: %s", emp.Email))
		pdf.Ln(lineHeight)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Joined: %s", emp.JoinDate))
	pdf.Ln(lineHeight)
	pdf.Cell(0, 8, fmt.Sprintf("As of: %s", bal.AsOfDate))
	pdf.Ln(10)

	writeBalance(pdf, bal)
	writeMonths(pdf, months.Months)
	writeTypes(pdf, months.Months)
	writeIssues(pdf, months.Issues)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render leave report: %w", err)
	}
	return nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func writeBalance(pdf *gofpdf.Fpdf, bal leave.LeaveBalance) {
	heading(pdf, "Balance")

	rows := []struct {
		label string
		value string
	}{
		{"Total accrued", days(bal.TotalAccrued)},
		{"Total taken", days(bal.TotalTaken)},
		{"Pending", days(bal.PendingRequests)},
		{"Remaining", days(bal.RemainingBalance)},
		{"Accrued this year", days(bal.AccruedThisYear)},
		{"Taken this year", days(bal.TakenThisYear)},
		{"Next accrual", bal.NextAccrualDate.String()},
	}

	pdf.SetFont(fontFamily, "", 11)
	for _, row := range rows {
		pdf.CellFormat(60, lineHeight, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, lineHeight, row.value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func writeMonths(pdf *gofpdf.Fpdf, months []leave.MonthlyApportionment) {
	heading(pdf, "Monthly Usage")

	if len(months) == 0 {
		pdf.SetFont(fontFamily, "I", 11)
		pdf.Cell(0, 8, "No leave recorded.")
		pdf.Ln(10)
		return
	}

	widths := []float64{50, 30, 30, 30, 30}
	pdf.SetFont(fontFamily, "B", 11)
	for i, h := range []string{"Month", "Total", "Approved", "Pending", "Rejected"} {
		pdf.CellFormat(widths[i], lineHeight, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 11)
	for _, m := range months {
		pdf.CellFormat(widths[0], lineHeight, m.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], lineHeight, days(m.TotalDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], lineHeight, days(m.ApprovedDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], lineHeight, days(m.PendingDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], lineHeight, days(m.RejectedDays), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func writeTypes(pdf *gofpdf.Fpdf, months []leave.MonthlyApportionment) {
	if len(months) == 0 {
		return
	}
	heading(pdf, "By Leave Type")

	widths := []float64{50, 40, 30, 30}
	pdf.SetFont(fontFamily, "B", 11)
	for i, h := range []string{"Month", "Type", "Days", "Requests"} {
		pdf.CellFormat(widths[i], lineHeight, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 11)
	for _, m := range months {
		for _, t := range leave.AllTypes {
			stat, ok := m.LeaveTypeStats[t]
			if !ok {
				continue
			}
			pdf.CellFormat(widths[0], lineHeight, m.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], lineHeight, string(t), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], lineHeight, days(stat.Days), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], lineHeight, strconv.Itoa(stat.RequestCount), "1", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(6)
}

func writeIssues(pdf *gofpdf.Fpdf, issues []leave.DataQualityIssue) {
	if len(issues) == 0 {
		return
	}
	heading(pdf, "Data Quality Issues")
	pdf.SetFont(fontFamily, "", 10)
	for _, issue := range issues {
		pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", issue.RequestID, issue.Reason), "", "L", false)
	}
}

func heading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

// days renders an exact day quantity: 9, 3.5, 0.25.
func days(a generic.Amount) string {
	return a.Value.String()
}
