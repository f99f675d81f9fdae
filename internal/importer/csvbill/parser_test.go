package csvbill_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/importer/csvbill"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Planilha(t *testing.T) {
	csv := `Contas de março;;;;
Gerado em;01/03/2025;;;

Descrição;Valor;Vencimento;Categoria;Observações
Aluguel;1.234,56;05/03/2025;Moradia;
Energia;R$ 150,25;10-03-2025;Utilidades;bandeira vermelha
Internet;99,90;2025-03-15;;
Total;1.484,71;;;
`

	p := csvbill.NewParser()
	got, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []bill.CreateParams{
		{Description: "Aluguel", Amount: 1234.56, DueDate: date(2025, 3, 5), Category: "Moradia"},
		{Description: "Energia", Amount: 150.25, DueDate: date(2025, 3, 10), Category: "Utilidades", Notes: "bandeira vermelha"},
		{Description: "Internet", Amount: 99.9, DueDate: date(2025, 3, 15)},
	}, got)
}

func TestParser_Export(t *testing.T) {
	csv := "descricao;valor;dataVencimento;categoria;observacoes\nÁgua;89.90;2025-02-10;Utilidades;\n"

	got, err := csvbill.NewParser(csvbill.ProfileExport).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Água", got[0].Description)
	assert.InDelta(t, 89.9, got[0].Amount, 1e-9)
	assert.Equal(t, date(2025, 2, 10), got[0].DueDate)
}

func TestParser_Windows1252(t *testing.T) {
	raw := "Descrição;Valor;Vencimento;Categoria;Observações\nCondomínio;650,00;20/03/2025;Moradia;sem observação\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(raw)
	require.NoError(t, err)

	got, err := csvbill.NewParser().Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Condomínio", got[0].Description)
	assert.Equal(t, "sem observação", got[0].Notes)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		profile []csvbill.Profile
		csv     string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "NoHeader",
			csv:     "Data;Montante\n05/03/2025;10,00\n",
			wantErr: "no bill header found",
		},
		{
			name:    "MissingDescription",
			csv:     "Descrição;Valor;Vencimento\n;10,00;05/03/2025\n",
			wantErr: "row 2: missing description",
		},
		{
			name:    "BadAmount",
			csv:     "Descrição;Valor;Vencimento\nAluguel;abc;05/03/2025\n",
			wantErr: "row 2: invalid amount",
		},
		{
			name:    "NegativeAmount",
			csv:     "Descrição;Valor;Vencimento\nEstorno;-10,00;05/03/2025\n",
			wantErr: "row 2: amount must be positive",
		},
		{
			name:    "ProfileMismatch",
			profile: []csvbill.Profile{csvbill.ProfileExport},
			csv:     "Descrição;Valor;Vencimento\nAluguel;10,00;05/03/2025\n",
			wantErr: "no bill header found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvbill.NewParser(tt.profile...).Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_HeaderOnly(t *testing.T) {
	got, err := csvbill.NewParser().Parse(strings.NewReader("Descrição;Valor;Vencimento\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
