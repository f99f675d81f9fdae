package csvbill

// Profile names the header of each column in one spreadsheet layout.
type Profile struct {
	Name        string
	DescCol     string
	AmountCol   string
	DueDateCol  string
	CategoryCol string
	NotesCol    string
}

func (p Profile) requiredCols() []string {
	return []string{p.DescCol, p.AmountCol, p.DueDateCol}
}

var (
	ProfilePlanilha = Profile{
		Name:        "planilha",
		DescCol:     "descrição",
		AmountCol:   "valor",
		DueDateCol:  "vencimento",
		CategoryCol: "categoria",
		NotesCol:    "observações",
	}

	ProfileExport = Profile{
		Name:        "export",
		DescCol:     "descricao",
		AmountCol:   "valor",
		DueDateCol:  "datavencimento",
		CategoryCol: "categoria",
		NotesCol:    "observacoes",
	}
)

var profiles = []Profile{ProfilePlanilha, ProfileExport}
