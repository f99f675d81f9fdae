// Package export writes a user's bills in the same ;-separated layout the
// importer reads back, plus a plain text statement.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/importer/csvbill"
)

const (
	colStatus   = "status"
	colPaidDate = "datapagamento"
	dateLayout  = "02/01/2006"
)

// Service exports the current user's bills.
type Service struct {
	bills *bill.Service
}

func NewService(bills *bill.Service) *Service {
	return &Service{bills: bills}
}

// Bills returns the current user's bills matching filter.
func (s *Service) Bills(ctx context.Context, filter bill.Filter) ([]bill.Bill, error) {
	if _, err := s.bills.UserID(ctx); err != nil {
		return nil, err
	}

	return s.bills.List(ctx, filter), nil
}

// WriteCSV writes bills with the export profile header.
func WriteCSV(w io.Writer, bills []bill.Bill) error {
	p := csvbill.ProfileExport

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{p.DescCol, p.AmountCol, p.DueDateCol, p.CategoryCol, p.NotesCol, colStatus, colPaidDate}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, b := range bills {
		paid := ""
		if b.PaidDate != nil {
			paid = b.PaidDate.Format(dateLayout)
		}

		record := []string{
			b.Description,
			FormatAmount(b.Amount),
			b.DueDate.Format(dateLayout),
			b.Category,
			b.Notes,
			string(b.Status),
			paid,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing bill %s: %w", b.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// FormatAmount renders an amount with a decimal comma and no grouping, e.g. 1234,56.
func FormatAmount(amount float64) string {
	return strings.Replace(decimal.NewFromFloat(amount).StringFixed(2), ".", ",", 1)
}

// Statement lists one bill per line followed by the summary totals.
func Statement(bills []bill.Bill) string {
	var sb strings.Builder

	for _, b := range bills {
		fmt.Fprintf(&sb, "* %s | %s | R$ %s | %s\n",
			b.DueDate.Format(dateLayout), b.Description, FormatAmount(b.Amount), b.Status)
	}

	s := bill.Summarize(bills)
	fmt.Fprintf(&sb, "\nTotal: R$ %s\nPagas: R$ %s\nPendentes: R$ %s\nAtrasadas: R$ %s\n",
		FormatAmount(s.Total), FormatAmount(s.Paid), FormatAmount(s.Pending), FormatAmount(s.Overdue))

	return sb.String()
}

// WriteArchive writes a zip holding contas.csv and resumo.txt.
func WriteArchive(w io.Writer, bills []bill.Bill) error {
	zw := zip.NewWriter(w)

	f, err := zw.Create("contas.csv")
	if err != nil {
		return fmt.Errorf("creating contas.csv: %w", err)
	}

	if err := WriteCSV(f, bills); err != nil {
		return err
	}

	f, err = zw.Create("resumo.txt")
	if err != nil {
		return fmt.Errorf("creating resumo.txt: %w", err)
	}

	if _, err := io.WriteString(f, Statement(bills)); err != nil {
		return fmt.Errorf("writing resumo.txt: %w", err)
	}

	return zw.Close()
}
