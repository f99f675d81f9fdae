package bill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/kv/memory"
)

type userKey struct{}

func asUser(id string) context.Context {
	return context.WithValue(context.Background(), userKey{}, id)
}

func newTestService(t *testing.T) (*bill.Service, *bill.Ledger) {
	t.Helper()

	ledger := seedLedger(t)

	return newServiceFor(t, ledger), ledger
}

func newServiceFor(t *testing.T, ledger *bill.Ledger) *bill.Service {
	t.Helper()

	ctrl := gomock.NewController(t)
	identity := bill.NewMockIdentity(ctrl)
	identity.EXPECT().CurrentUserID(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, bool) {
		id, ok := ctx.Value(userKey{}).(string)
		return id, ok && id != ""
	}).AnyTimes()

	return bill.NewService(ledger, identity)
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name    string
		ctx     context.Context
		wantErr error
	}

	tests := []testCase{
		{name: "Success", ctx: asUser("U1")},
		{name: "NoUser", ctx: context.Background(), wantErr: bill.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger := newTestService(t)
			before := ledger.Snapshot().Len()

			got, err := svc.Create(tt.ctx, rentParams())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Equal(t, before, ledger.Snapshot().Len())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "U1", got.UserID)
			assert.Equal(t, before+1, ledger.Snapshot().Len())
		})
	}
}

func TestService_ReadsWithoutUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx, bill.Filter{}))
	assert.Empty(t, svc.Categories(ctx))
	assert.Equal(t, bill.Summary{}, svc.Summary(ctx, bill.Filter{}))

	_, err := svc.Get(ctx, "any")
	assert.ErrorIs(t, err, bill.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.Delete(ctx, "any"), bill.ErrNotAuthenticated)
}

func TestService_ListAndSummary(t *testing.T) {
	svc, _ := newTestService(t)

	list := svc.List(asUser("U1"), bill.Filter{Category: new("Utilities")})
	assert.Equal(t, []string{"Power", "Water"}, descriptions(list))

	summary := svc.Summary(asUser("U1"), bill.Filter{})
	assert.InDelta(t, 1200+150.25+60+89.9, summary.Total, 1e-9)
	assert.InDelta(t, summary.Total, summary.Pending, 1e-9)

	assert.Equal(t, []string{"Housing"}, svc.Categories(asUser("U2")))
}

func TestService_OtherUsersBillsAreInvisible(t *testing.T) {
	svc, ledger := newTestService(t)

	foreign := bill.ForUser(ledger.Snapshot(), "U2")[0]
	desc := "hijacked"

	_, err := svc.Get(asUser("U1"), foreign.ID)
	assert.ErrorIs(t, err, bill.ErrNotFound)

	_, err = svc.Update(asUser("U1"), foreign.ID, bill.UpdateParams{Description: &desc})
	assert.ErrorIs(t, err, bill.ErrNotFound)

	_, err = svc.Pay(asUser("U1"), foreign.ID)
	assert.ErrorIs(t, err, bill.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(asUser("U1"), foreign.ID), bill.ErrNotFound)

	got, err := svc.Get(asUser("U2"), foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Description)
	assert.Equal(t, bill.StatusPending, got.Status)
}

func TestService_PayAndDelete(t *testing.T) {
	svc, ledger := newTestService(t)
	ctx := asUser("U1")

	own := svc.List(ctx, bill.Filter{})[0]

	paid, err := svc.Pay(ctx, own.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidDate)

	require.NoError(t, svc.Delete(ctx, own.ID))
	require.NoError(t, svc.Delete(ctx, own.ID), "deleting twice is a no-op")

	_, err = ledger.Get(own.ID)
	assert.ErrorIs(t, err, bill.ErrNotFound)
}

func TestService_ChecksOwnershipBeforeLoad(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()

	writer := bill.NewLedger(storage)
	own, err := writer.Create(ctx, "U1", rentParams())
	require.NoError(t, err)

	ledger := bill.NewLedger(storage)
	require.Zero(t, ledger.Snapshot().Len())

	svc := newServiceFor(t, ledger)

	got, err := svc.Get(asUser("U1"), own.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Description)

	_, err = svc.Pay(asUser("U2"), own.ID)
	assert.ErrorIs(t, err, bill.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(asUser("U2"), own.ID), bill.ErrNotFound)

	reloaded := bill.NewLedger(storage)
	require.NoError(t, reloaded.Load(ctx))

	stored, err := reloaded.Get(own.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPending, stored.Status)
}

func TestService_RefreshOverdue(t *testing.T) {
	svc, _ := newTestService(t)

	// The seeded ledger clock sits at 2024-01-01, before every due date.
	changed, err := svc.RefreshOverdue(asUser("U1"))
	require.NoError(t, err)
	assert.Zero(t, changed)
}
