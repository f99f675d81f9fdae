package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/importer/csvbill"
)

type Service struct {
	auto      Importer
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		auto: csvbill.NewParser(),
		importers: map[Format]Importer{
			FormatPlanilha: csvbill.NewParser(csvbill.ProfilePlanilha),
			FormatExport:   csvbill.NewParser(csvbill.ProfileExport),
		},
	}
}

// Import parses r with the importer registered for format. An empty format
// lets the parser pick a layout from the header row.
func (s *Service) Import(format Format, r io.Reader) ([]bill.CreateParams, error) {
	if format == "" {
		return s.auto.Parse(r)
	}

	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return importer.Parse(r)
}
