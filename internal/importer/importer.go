package importer

import (
	"io"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

type Format string

const (
	// FormatPlanilha is the spreadsheet layout with Portuguese column titles.
	FormatPlanilha Format = "planilha"
	// FormatExport is the layout produced by exporting the ledger's own JSON field names.
	FormatExport Format = "export"
)

type Importer interface {
	Parse(r io.Reader) ([]bill.CreateParams, error)
}
