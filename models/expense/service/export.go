package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/xuri/excelize/v2"
)

const (
	balancesSheet    = "Balances"
	expensesSheet    = "Expenses"
	settlementsSheet = "Settlements"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExportWorkbook renders balances, expenses and settlements as an xlsx
// workbook and suggests a file name for it.
func (s *ExpenseService) ExportWorkbook(ctx context.Context, tripID, userID int64) (*excelize.File, string, error) {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, userID)
	if err != nil {
		return nil, "", err
	}
	in, err := s.loadLedger(ctx, mc.Trip)
	if err != nil {
		return nil, "", err
	}
	balances := CalculateBalances(*in)

	f, err := buildWorkbook(in, balances)
	if err != nil {
		return nil, "", err
	}
	return f, ExportFileName(mc.Trip.Name, time.Now()), nil
}

// ExportFileName returns a filesystem-safe name such as
// "Lisbon_Weekend_Export_2026-06-01.xlsx".
func ExportFileName(tripName string, now time.Time) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(tripName, "_"), "_")
	if name == "" {
		name = "Trip"
	}
	return fmt.Sprintf("%s_Export_%s.xlsx", name, now.Format("2006-01-02"))
}

func buildWorkbook(in *BalanceInput, balances *types.TripBalances) (*excelize.File, error) {
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(balances.Balances))
	for _, b := range balances.Balances {
		names[b.UserID] = b.Name
	}
	nameOf := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return displayName(id, in.Users[id], nil)
	}

	balanceRows := [][]interface{}{}
	for _, b := range balances.Balances {
		balanceRows = append(balanceRows, []interface{}{
			b.Name,
			money(b.TotalPaid),
			money(b.TotalOwed),
			money(b.SettlementsPaid),
			money(b.SettlementsReceived),
			money(b.NetBalance),
			formerLabel(b),
		})
	}
	balanceRows = append(balanceRows, []interface{}{}, []interface{}{"Suggested transfers"})
	for _, t := range balances.Suggestions {
		balanceRows = append(balanceRows, []interface{}{nameOf(t.FromUserID), nameOf(t.ToUserID), money(t.Amount)})
	}

	expenseRows := [][]interface{}{}
	for _, e := range in.Expenses {
		shares := make([]string, 0, len(e.Splits))
		for _, sp := range e.Splits {
			shares = append(shares, fmt.Sprintf("%s %s", nameOf(sp.UserID), sp.Amount))
		}
		expenseRows = append(expenseRows, []interface{}{
			e.CreatedAt.Format("2006-01-02"),
			e.Description,
			e.Category,
			nameOf(e.PaidBy),
			money(e.Amount),
			strings.Join(shares, ", "),
		})
	}

	settlementRows := [][]interface{}{}
	for _, st := range in.Settlements {
		settlementRows = append(settlementRows, []interface{}{
			st.CreatedAt.Format("2006-01-02"),
			nameOf(st.PayerID),
			nameOf(st.PayeeID),
			money(st.Amount),
			string(st.Method),
			string(st.Status),
		})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{balancesSheet, []string{"Member", "Paid", "Owed", "Settled Out", "Settled In", "Net Balance", "Status"}, balanceRows},
		{expensesSheet, []string{"Date", "Description", "Category", "Paid By", "Amount", "Shares"}, expenseRows},
		{settlementsSheet, []string{"Date", "From", "To", "Amount", "Method", "Status"}, settlementRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.headers, sh.rows, headerStyle); err != nil {
			return nil, err
		}
	}

	if idx, err := f.GetSheetIndex(balancesSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(name, "A", lastCol, 18)
}

func money(a valueobjects.Amount) float64 {
	f, _ := a.Float64()
	return f
}

func formerLabel(b types.MemberBalance) string {
	if b.IsLegacyRemoved {
		return "former member"
	}
	return "member"
}
