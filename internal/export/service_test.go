package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contas/internal/auth"
	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/export"
	"github.com/MrJamesThe3rd/contas/internal/importer/csvbill"
	"github.com/MrJamesThe3rd/contas/internal/kv/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleBills() []bill.Bill {
	paid := date(2025, 1, 9)

	return []bill.Bill{
		{
			ID:          "1",
			Description: "Aluguel; apto 12",
			Amount:      1500,
			DueDate:     date(2025, 1, 10),
			PaidDate:    &paid,
			Status:      bill.StatusPaid,
			Category:    "Moradia",
		},
		{
			ID:          "2",
			Description: "Luz",
			Amount:      150.25,
			DueDate:     date(2025, 1, 20),
			Status:      bill.StatusPending,
			Category:    "Contas",
			Notes:       "débito automático",
		},
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1234,56", export.FormatAmount(1234.56))
	assert.Equal(t, "89,90", export.FormatAmount(89.9))
	assert.Equal(t, "1500,00", export.FormatAmount(1500))
}

func TestWriteCSV_ReadsBackWithImporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleBills()))

	assert.Contains(t, buf.String(), "descricao;valor;datavencimento;categoria;observacoes;status;datapagamento\n")
	assert.Contains(t, buf.String(), "paga;09/01/2025")

	got, err := csvbill.NewParser().Parse(&buf)
	require.NoError(t, err)

	assert.Equal(t, []bill.CreateParams{
		{Description: "Aluguel; apto 12", Amount: 1500, DueDate: date(2025, 1, 10), Category: "Moradia"},
		{Description: "Luz", Amount: 150.25, DueDate: date(2025, 1, 20), Category: "Contas", Notes: "débito automático"},
	}, got)
}

func TestStatement(t *testing.T) {
	got := export.Statement(sampleBills())

	assert.Contains(t, got, "* 10/01/2025 | Aluguel; apto 12 | R$ 1500,00 | paga\n")
	assert.Contains(t, got, "Total: R$ 1650,25\n")
	assert.Contains(t, got, "Pendentes: R$ 150,25\n")
	assert.Contains(t, got, "Atrasadas: R$ 0,00\n")
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteArchive(&buf, sampleBills()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"contas.csv", "resumo.txt"}, names)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, export.Statement(sampleBills()), string(body))
}

func TestService_Bills(t *testing.T) {
	ctx := context.Background()
	ledger := bill.NewLedger(memory.New())
	require.NoError(t, ledger.Load(ctx))

	_, err := ledger.Create(ctx, "U1", bill.CreateParams{Description: "Luz", Amount: 10, DueDate: date(2030, 1, 1), Category: "Contas"})
	require.NoError(t, err)

	_, err = ledger.Create(ctx, "U2", bill.CreateParams{Description: "Água", Amount: 20, DueDate: date(2030, 1, 1), Category: "Contas"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		identity auth.StaticIdentity
		want     []string
		wantErr  error
	}{
		{name: "OwnBillsOnly", identity: "U1", want: []string{"Luz"}},
		{name: "NoUser", identity: "", wantErr: bill.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := export.NewService(bill.NewService(ledger, tt.identity))

			got, err := svc.Bills(ctx, bill.Filter{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want[0], got[0].Description)
		})
	}
}
