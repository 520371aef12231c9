package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quintastock/internal/core/apperror"
	"quintastock/internal/domain/quinta"
)

func TestBuilder_AddLineValidation(t *testing.T) {
	b := NewBuilder(quinta.StockGeral, "Quinta do Bomfim", MovementSaida, newFakeLedger())
	ctx := context.Background()

	assertErrCode(t, b.AddLine(ctx, "", "Vintage 2017", 1), apperror.CodeValidation)
	assertErrCode(t, b.AddLine(ctx, "Dow's", "   ", 1), apperror.CodeValidation)
	assertErrCode(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 0), apperror.CodeValidation)
	assertErrCode(t, b.AddLine(ctx, "Dow's", "Vintage 2017", -3), apperror.CodeValidation)
	assert.Empty(t, b.Lines())
}

func TestBuilder_SaidaNetsStagedQuantities(t *testing.T) {
	ledger := newFakeLedger()
	ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 10)

	b := NewBuilder(quinta.StockGeral, "Quinta do Bomfim", MovementSaida, ledger)
	ctx := context.Background()

	require.NoError(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 6))

	// 6 staged, only 4 remain.
	err := b.AddLine(ctx, "Dow's", "Vintage 2017", 5)
	assertErrCode(t, err, apperror.CodeInsufficientStock)

	require.NoError(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 4))
	require.Len(t, b.Lines(), 2)

	// Fully staged: even one more bottle is too many.
	assertErrCode(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 1), apperror.CodeInsufficientStock)
}

func TestBuilder_SaidaDifferentWinesDoNotInterfere(t *testing.T) {
	ledger := newFakeLedger()
	ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 3)
	ledger.set("Graham's", "Six Grapes", quinta.StockGeral, 3)

	b := NewBuilder(quinta.StockGeral, "Quinta do Bomfim", MovementSaida, ledger)
	ctx := context.Background()

	require.NoError(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 3))
	require.NoError(t, b.AddLine(ctx, "Graham's", "Six Grapes", 3))
}

func TestBuilder_EntradaIsUnbounded(t *testing.T) {
	// No stock anywhere, incoming lines do not care.
	b := NewBuilder(quinta.AjusteDeStock, "Quinta do Bomfim", MovementEntrada, newFakeLedger())

	require.NoError(t, b.AddLine(context.Background(), "Dow's", "Vintage 2017", 500))
	require.Len(t, b.Lines(), 1)
	assert.Equal(t, 500, b.Lines()[0].Quantity)
}

func TestBuilder_LineNumbering(t *testing.T) {
	b := NewBuilder(quinta.AjusteDeStock, "Quinta do Bomfim", MovementEntrada, newFakeLedger())
	ctx := context.Background()

	require.NoError(t, b.AddLine(ctx, "Dow's", "Vintage 2017", 1))
	require.NoError(t, b.AddLine(ctx, "Graham's", "Six Grapes", 2))
	require.NoError(t, b.AddLine(ctx, "Altano", "Branco 2023", 3))

	require.NoError(t, b.RemoveLine(2))

	lines := b.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNo)
	assert.Equal(t, "Dow's", lines[0].Brand)
	assert.Equal(t, 2, lines[1].LineNo)
	assert.Equal(t, "Altano", lines[1].Brand)

	assertErrCode(t, b.RemoveLine(0), apperror.CodeValidation)
	assertErrCode(t, b.RemoveLine(3), apperror.CodeValidation)
}

func TestBuilder_TrimsWineIdentification(t *testing.T) {
	ledger := newFakeLedger()
	ledger.set("Dow's", "Vintage 2017", quinta.StockGeral, 5)

	b := NewBuilder(quinta.StockGeral, "Quinta do Bomfim", MovementSaida, ledger)
	require.NoError(t, b.AddLine(context.Background(), "  Dow's ", " Vintage 2017  ", 2))

	line := b.Lines()[0]
	assert.Equal(t, "Dow's", line.Brand)
	assert.Equal(t, "Vintage 2017", line.WineName)
}
