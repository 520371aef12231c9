package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/appctx"
	"quintastock/internal/core/id"
	"quintastock/internal/core/security"
	"quintastock/internal/domain/quinta"
)

type fakeRepo struct {
	transfers map[id.ID]*Transfer
	lines     map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		transfers: make(map[id.ID]*Transfer),
		lines:     make(map[id.ID][]Line),
	}
}

func (f *fakeRepo) Create(ctx context.Context, t *Transfer) error {
	copied := *t
	copied.Lines = nil
	f.transfers[t.ID] = &copied
	return nil
}

func (f *fakeRepo) SaveLines(ctx context.Context, transferID id.ID, lines []Line) error {
	f.lines[transferID] = append([]Line(nil), lines...)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, transferID id.ID) (*Transfer, error) {
	t, ok := f.transfers[transferID]
	if !ok {
		return nil, apperror.NewNotFound("transfer", transferID)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, transferID id.ID) (*Transfer, error) {
	return f.GetByID(ctx, transferID)
}

func (f *fakeRepo) GetLines(ctx context.Context, transferID id.ID) ([]Line, error) {
	return append([]Line(nil), f.lines[transferID]...), nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, t *Transfer) error {
	stored, ok := f.transfers[t.ID]
	if !ok {
		return apperror.NewNotFound("transfer", t.ID)
	}
	stored.Status = t.Status
	stored.ApprovedBy = t.ApprovedBy
	stored.DecidedAt = t.DecidedAt
	stored.UpdatedAt = t.UpdatedAt
	stored.Version++
	t.Version++
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter HistoryFilter) ([]*Transfer, error) {
	var out []*Transfer
	for _, t := range f.transfers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	for _, t := range f.transfers {
		if t.Status == StatusPendente {
			n++
		}
	}
	return n, nil
}

type movement struct {
	brand, wineName, location string
	quantity                  int
}

// fakeLedger tracks availability per wine+location and records reconciliation
// calls.
type fakeLedger struct {
	available map[string]int
	outbound  []movement
	inbound   []movement
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{available: make(map[string]int)}
}

func stockKey(brand, wineName, location string) string {
	return brand + "|" + wineName + "|" + location
}

func (f *fakeLedger) set(brand, wineName, location string, quantity int) {
	f.available[stockKey(brand, wineName, location)] = quantity
}

func (f *fakeLedger) Available(ctx context.Context, brand, wineName, location string) (int, error) {
	return f.available[stockKey(brand, wineName, location)], nil
}

func (f *fakeLedger) ApplyOutbound(ctx context.Context, brand, wineName, location string, quantity int) error {
	f.outbound = append(f.outbound, movement{brand, wineName, location, quantity})
	return nil
}

func (f *fakeLedger) ApplyInbound(ctx context.Context, brand, wineName, location string, quantity int) error {
	f.inbound = append(f.inbound, movement{brand, wineName, location, quantity})
	return nil
}

type fakeQuintas struct {
	names map[string]bool
}

func (f *fakeQuintas) Exists(ctx context.Context, name string) (bool, error) {
	return f.names[name], nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	ledger  *fakeLedger
	quintas *fakeQuintas
}

func newFixture(t *testing.T, rule *security.ReviewRule) *fixture {
	t.Helper()
	repo := newFakeRepo()
	ledger := newFakeLedger()
	quintas := &fakeQuintas{names: map[string]bool{
		"Quinta do Bomfim":  true,
		"Quinta dos Canais": true,
	}}
	return &fixture{
		svc:     NewService(repo, ledger, quintas, passthroughTx{}, rule, nil),
		repo:    repo,
		ledger:  ledger,
		quintas: quintas,
	}
}

func supervisorCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u-1",
		Name:   "Ana Supervisor",
		Role:   security.RoleSupervisor,
	})
}

func operadorCtx(permissions ...string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:      "u-2",
		Name:        "Bruno Operador",
		Role:        security.RoleOperador,
		Permissions: permissions,
	})
}

func quintaCtx(home string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u-3",
		Name:   "Carla Bomfim",
		Role:   security.RoleQuinta,
		Quinta: home,
	})
}

func saidaRequest(lines ...LineInput) SubmitRequest {
	return SubmitRequest{
		FromQuinta:   quinta.StockGeral,
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementSaida,
		ToWhom:       "Adega",
		Lines:        lines,
	}
}

func submitOne(t *testing.T, fx *fixture, ctx context.Context, req SubmitRequest) *Transfer {
	t.Helper()
	created, err := fx.svc.Submit(ctx, req)
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected app error, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestSubmit_Unauthenticated(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.svc.Submit(context.Background(), saidaRequest(LineInput{"Dow's", "Vintage 2017", 2}))
	assertErrCode(t, err, apperror.CodeUnauthorized)
}

func TestSubmit_SupervisorApprovesAndReconcilesImmediately(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	tr := submitOne(t, fx, supervisorCtx(), saidaRequest(LineInput{"Dow's", "Vintage 2017", 4}))

	assert.Equal(t, StatusAprovado, tr.Status)
	require.NotNil(t, tr.ApprovedBy)
	assert.Equal(t, "Ana Supervisor", *tr.ApprovedBy)
	assert.NotNil(t, tr.DecidedAt)

	require.Len(t, fx.ledger.outbound, 1)
	assert.Equal(t, movement{"Dow's", "Vintage 2017", quinta.StockGeral, 4}, fx.ledger.outbound[0])
	require.Len(t, fx.ledger.inbound, 1)
	assert.Equal(t, movement{"Dow's", "Vintage 2017", "Quinta do Bomfim", 4}, fx.ledger.inbound[0])

	lines, err := fx.repo.GetLines(context.Background(), tr.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].LineNo)
}

func TestSubmit_RequiresToWhom(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	req := saidaRequest(LineInput{"Dow's", "Vintage 2017", 2})
	req.ToWhom = ""
	_, err := fx.svc.Submit(supervisorCtx(), req)
	assertErrCode(t, err, apperror.CodeValidation)
	assert.Empty(t, fx.repo.transfers)
	assert.Empty(t, fx.ledger.outbound, "a rejected submission never reaches the ledger")

	req.ToWhom = "   "
	_, err = fx.svc.Submit(supervisorCtx(), req)
	assertErrCode(t, err, apperror.CodeValidation)
}

func TestSubmit_OneTransferPerLine(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)
	fx.ledger.set("Graham's", "LBV 2019", quinta.StockGeral, 10)

	created, err := fx.svc.Submit(supervisorCtx(), saidaRequest(
		LineInput{"Dow's", "Vintage 2017", 4},
		LineInput{"Graham's", "LBV 2019", 6},
	))
	require.NoError(t, err)
	require.Len(t, created, 2, "one transfer per staged line")

	assert.NotEqual(t, created[0].ID, created[1].ID)
	for _, tr := range created {
		require.Len(t, tr.Lines, 1)
		assert.Equal(t, 1, tr.Lines[0].LineNo)
		assert.Equal(t, "Adega", tr.ToWhom)
	}
	assert.Equal(t, "Dow's", created[0].Lines[0].Brand)
	assert.Equal(t, "Graham's", created[1].Lines[0].Brand)
	assert.Len(t, fx.repo.transfers, 2)
}

func TestSubmit_LinesDecidedIndependently(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", "Quinta do Bomfim", 20)
	fx.ledger.set("Graham's", "LBV 2019", "Quinta do Bomfim", 20)

	created, err := fx.svc.Submit(quintaCtx("Quinta do Bomfim"), SubmitRequest{
		FromQuinta:   "Quinta do Bomfim",
		ToQuinta:     quinta.StockGeral,
		MovementType: MovementSaida,
		ToWhom:       "Reposição",
		Lines: []LineInput{
			{"Dow's", "Vintage 2017", 3},
			{"Graham's", "LBV 2019", 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	approved, err := fx.svc.Decide(supervisorCtx(), created[0].ID, true)
	require.NoError(t, err)
	rejected, err := fx.svc.Decide(supervisorCtx(), created[1].ID, false)
	require.NoError(t, err)

	assert.Equal(t, StatusAprovado, approved.Status)
	assert.Equal(t, StatusReprovado, rejected.Status)
	require.Len(t, fx.ledger.outbound, 1, "only the approved line moves stock")
	assert.Equal(t, movement{"Dow's", "Vintage 2017", "Quinta do Bomfim", 3}, fx.ledger.outbound[0])
}

func TestSubmit_QuintaUserWaitsPendente(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", "Quinta do Bomfim", 10)

	req := SubmitRequest{
		FromQuinta:   "Quinta do Bomfim",
		ToQuinta:     quinta.StockGeral,
		MovementType: MovementSaida,
		ToWhom:       "Reposição",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 3}},
	}
	tr := submitOne(t, fx, quintaCtx("Quinta do Bomfim"), req)

	assert.Equal(t, StatusPendente, tr.Status)
	assert.Nil(t, tr.ApprovedBy)
	assert.Empty(t, fx.ledger.outbound, "pending transfers leave the ledger untouched")
	assert.Empty(t, fx.ledger.inbound)
}

func TestSubmit_QuintaUserLocks(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", "Quinta dos Canais", 10)
	ctx := quintaCtx("Quinta do Bomfim")

	// Saída must leave the user's own quinta.
	_, err := fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   "Quinta dos Canais",
		ToQuinta:     quinta.StockGeral,
		MovementType: MovementSaida,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeForbidden)

	// Entrada must come from the adjustment source.
	_, err = fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   quinta.StockGeral,
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementEntrada,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeForbidden)

	// Entrada must arrive at the user's own quinta.
	_, err = fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   quinta.AjusteDeStock,
		ToQuinta:     "Quinta dos Canais",
		MovementType: MovementEntrada,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeForbidden)

	// The allowed shape: adjustment into the home quinta.
	tr := submitOne(t, fx, ctx, SubmitRequest{
		FromQuinta:   quinta.AjusteDeStock,
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementEntrada,
		ToWhom:       "Produção",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assert.Equal(t, StatusPendente, tr.Status)
}

func TestSubmit_OperadorApprovalPermission(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	tr := submitOne(t, fx, operadorCtx(security.PermissionMovimentar), saidaRequest(LineInput{"Dow's", "Vintage 2017", 2}))
	assert.Equal(t, StatusPendente, tr.Status, "operador without Aprovar waits for review")

	tr = submitOne(t, fx, operadorCtx(security.PermissionMovimentar, security.PermissionAprovar), saidaRequest(LineInput{"Dow's", "Vintage 2017", 2}))
	assert.Equal(t, StatusAprovado, tr.Status)
}

func TestSubmit_StagedLinesShareAvailability(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	// 6 + 5 oversubscribes the 10 available even though each line alone fits.
	_, err := fx.svc.Submit(supervisorCtx(), saidaRequest(
		LineInput{"Dow's", "Vintage 2017", 6},
		LineInput{"Dow's", "Vintage 2017", 5},
	))
	assertErrCode(t, err, apperror.CodeInsufficientStock)
	assert.Empty(t, fx.repo.transfers, "nothing is stored when a line fails")

	// 6 + 4 exactly drains it.
	created, err := fx.svc.Submit(supervisorCtx(), saidaRequest(
		LineInput{"Dow's", "Vintage 2017", 6},
		LineInput{"Dow's", "Vintage 2017", 4},
	))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 6, created[0].TotalQuantity())
	assert.Equal(t, 4, created[1].TotalQuantity())
}

func TestSubmit_UnknownEndpoint(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.svc.Submit(supervisorCtx(), SubmitRequest{
		FromQuinta:   quinta.StockGeral,
		ToQuinta:     "Quinta Inventada",
		MovementType: MovementSaida,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeValidation)
}

func TestSubmit_AjusteSourceSkipsDecrement(t *testing.T) {
	fx := newFixture(t, nil)

	tr := submitOne(t, fx, supervisorCtx(), SubmitRequest{
		FromQuinta:   quinta.AjusteDeStock,
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementEntrada,
		ToWhom:       "Produção",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 12}},
	})
	assert.Equal(t, StatusAprovado, tr.Status)
	assert.Empty(t, fx.ledger.outbound, "adjustments conjure bottles, no source decrement")
	require.Len(t, fx.ledger.inbound, 1)
	assert.Equal(t, movement{"Dow's", "Vintage 2017", "Quinta do Bomfim", 12}, fx.ledger.inbound[0])
}

func TestSubmit_ConsumoDestinationSkipsIncrement(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", "Quinta do Bomfim", 20)

	tr := submitOne(t, fx, supervisorCtx(), SubmitRequest{
		FromQuinta:   "Quinta do Bomfim",
		ToQuinta:     quinta.Consumo,
		MovementType: MovementSaida,
		ToWhom:       "Prova",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 5}},
	})
	assert.Equal(t, StatusAprovado, tr.Status)
	require.Len(t, fx.ledger.outbound, 1)
	assert.Empty(t, fx.ledger.inbound, "consumed bottles land nowhere")
}

func TestSubmit_InvalidShapes(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := supervisorCtx()

	// Consumo cannot be a source.
	_, err := fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   quinta.Consumo,
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementEntrada,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeValidation)

	// Ajuste de Stock cannot be a destination.
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)
	_, err = fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   quinta.StockGeral,
		ToQuinta:     quinta.AjusteDeStock,
		MovementType: MovementSaida,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeValidation)

	// Source and destination must differ.
	_, err = fx.svc.Submit(ctx, SubmitRequest{
		FromQuinta:   "Quinta do Bomfim",
		ToQuinta:     "Quinta do Bomfim",
		MovementType: MovementSaida,
		ToWhom:       "Adega",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 1}},
	})
	assertErrCode(t, err, apperror.CodeValidation)
}

func TestSubmit_ReviewRuleForcesPendente(t *testing.T) {
	rule, err := security.CompileReviewRule(`totalQuantity > 10`)
	require.NoError(t, err)

	fx := newFixture(t, rule)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 100)
	fx.ledger.set("Graham's", "LBV 2019", quinta.StockGeral, 100)

	tr := submitOne(t, fx, supervisorCtx(), saidaRequest(LineInput{"Dow's", "Vintage 2017", 8}))
	assert.Equal(t, StatusAprovado, tr.Status)

	tr = submitOne(t, fx, supervisorCtx(), saidaRequest(LineInput{"Dow's", "Vintage 2017", 11}))
	assert.Equal(t, StatusPendente, tr.Status, "matching rule overrides auto-approval")

	// The rule applies per transfer, so one submission can mix outcomes.
	created, err := fx.svc.Submit(supervisorCtx(), saidaRequest(
		LineInput{"Dow's", "Vintage 2017", 8},
		LineInput{"Graham's", "LBV 2019", 11},
	))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, StatusAprovado, created[0].Status)
	assert.Equal(t, StatusPendente, created[1].Status)
}

func TestSubmit_DefaultsDateToNow(t *testing.T) {
	fx := newFixture(t, nil)
	fx.ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	before := time.Now()
	tr := submitOne(t, fx, supervisorCtx(), saidaRequest(LineInput{"Dow's", "Vintage 2017", 1}))
	assert.False(t, tr.Date.Before(before))
}

func submitPending(t *testing.T, fx *fixture) *Transfer {
	t.Helper()
	fx.ledger.set("Dow's", "Vintage 2017", "Quinta do Bomfim", 10)
	tr := submitOne(t, fx, quintaCtx("Quinta do Bomfim"), SubmitRequest{
		FromQuinta:   "Quinta do Bomfim",
		ToQuinta:     quinta.StockGeral,
		MovementType: MovementSaida,
		ToWhom:       "Reposição",
		Lines:        []LineInput{{"Dow's", "Vintage 2017", 3}},
	})
	require.Equal(t, StatusPendente, tr.Status)
	return tr
}

func TestDecide_Approve(t *testing.T) {
	fx := newFixture(t, nil)
	pending := submitPending(t, fx)

	decided, err := fx.svc.Decide(supervisorCtx(), pending.ID, true)
	require.NoError(t, err)

	assert.Equal(t, StatusAprovado, decided.Status)
	require.NotNil(t, decided.ApprovedBy)
	assert.Equal(t, "Ana Supervisor", *decided.ApprovedBy)
	require.Len(t, fx.ledger.outbound, 1)
	assert.Equal(t, movement{"Dow's", "Vintage 2017", "Quinta do Bomfim", 3}, fx.ledger.outbound[0])
	require.Len(t, fx.ledger.inbound, 1)
}

func TestDecide_Reject(t *testing.T) {
	fx := newFixture(t, nil)
	pending := submitPending(t, fx)

	decided, err := fx.svc.Decide(supervisorCtx(), pending.ID, false)
	require.NoError(t, err)

	assert.Equal(t, StatusReprovado, decided.Status)
	assert.Nil(t, decided.ApprovedBy, "approver name is set only on approval")
	assert.NotNil(t, decided.DecidedAt)
	assert.Empty(t, fx.ledger.outbound, "rejection never touches the ledger")
	assert.Empty(t, fx.ledger.inbound)

	stored, err := fx.repo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovedBy)
}

func TestDecide_AtMostOnce(t *testing.T) {
	fx := newFixture(t, nil)
	pending := submitPending(t, fx)

	_, err := fx.svc.Decide(supervisorCtx(), pending.ID, true)
	require.NoError(t, err)

	_, err = fx.svc.Decide(supervisorCtx(), pending.ID, true)
	assertErrCode(t, err, apperror.CodeTransferDecided)
	assert.Len(t, fx.ledger.outbound, 1, "reconciliation ran exactly once")
}

func TestDecide_RequiresApprovalCapability(t *testing.T) {
	fx := newFixture(t, nil)
	pending := submitPending(t, fx)

	_, err := fx.svc.Decide(quintaCtx("Quinta do Bomfim"), pending.ID, true)
	assertErrCode(t, err, apperror.CodeForbidden)

	_, err = fx.svc.Decide(operadorCtx(security.PermissionMovimentar), pending.ID, true)
	assertErrCode(t, err, apperror.CodeForbidden)

	_, err = fx.svc.Decide(operadorCtx(security.PermissionAprovar), pending.ID, true)
	require.NoError(t, err)
}

func TestDecide_NotFound(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.svc.Decide(supervisorCtx(), id.New(), true)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPendingAndCount(t *testing.T) {
	fx := newFixture(t, nil)
	pending := submitPending(t, fx)

	list, err := fx.svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	count, err := fx.svc.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = fx.svc.Decide(supervisorCtx(), pending.ID, false)
	require.NoError(t, err)

	count, err = fx.svc.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
