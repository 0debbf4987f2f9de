package painel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pluckstudio/demandas/internal/demanda"
)

func TestExportEmptyProducesNoFile(t *testing.T) {
	data, err := NewExporter(time.UTC, nil, zerolog.Nop()).Export(nil)
	require.ErrorIs(t, err, ErrNadaParaExportar)
	assert.Nil(t, data)
	assert.Equal(t, MsgNadaParaExportar, Mensagem(err))
}

func TestExportLayout(t *testing.T) {
	records := []demanda.Demanda{
		{
			ID:                    "antiga",
			Demanda:               "Tapa-buraco na Rua A",
			Prioridade:            demanda.PrioridadeBaixa,
			SecretariaResponsavel: "Obras",
			DataDemanda:           at(2024, 1, 10, 0),
			CriadoEm:              at(2024, 1, 10, 9),
		},
		{
			ID:                    "nova",
			Demanda:               "Coleta de entulho",
			TipoServico:           "Limpeza",
			Prioridade:            demanda.PrioridadeAlta,
			Prazo:                 "3 dias",
			SecretariaResponsavel: "Meio Ambiente",
			Status:                demanda.StatusEmAndamento,
			Detalhes:              "Próximo à escola",
			Observacoes:           "Urgente",
			DataDemanda:           at(2024, 2, 1, 0),
			CriadoEm:              at(2024, 2, 1, 8),
		},
		{
			ID:                    "legada",
			Demanda:               "Registro sem datas",
			SecretariaResponsavel: "Saúde",
		},
	}
	views := demanda.ToViews(records, time.UTC)

	data, err := NewExporter(time.UTC, nil, zerolog.Nop()).Export(views)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{NomePlanilha}, f.GetSheetList())

	rows, err := f.GetRows(NomePlanilha)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Cabecalho, rows[0])
	assert.Equal(t, []string{
		"Coleta de entulho", "Limpeza", "Alta", "3 dias", "Meio Ambiente",
		"Em Andamento", "Próximo à escola", "Urgente", "01/02/2024",
	}, rows[1])
	assert.Equal(t, "Tapa-buraco na Rua A", rows[2][0])
	assert.Equal(t, "Registro sem datas", rows[3][0])

	legacyDate, err := f.GetCellValue(NomePlanilha, "I4")
	require.NoError(t, err)
	assert.Empty(t, legacyDate)
	assert.Equal(t, demanda.Placeholder, views[2].DataDemanda)

	styleID, err := f.GetCellStyle(NomePlanilha, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	for _, col := range []string{"A", "I"} {
		width, err := f.GetColWidth(NomePlanilha, col)
		require.NoError(t, err)
		assert.Equal(t, larguraColuna, width, col)
	}
}

func TestExportSessionPublishesNotices(t *testing.T) {
	fx := newFixture(t)
	sess := fx.session(t)
	exporter := NewExporter(time.UTC, fx.notices, zerolog.Nop())
	ctx := context.Background()

	_, err := exporter.ExportSession(ctx, sess)
	require.ErrorIs(t, err, ErrNadaParaExportar)
	assert.Equal(t, MsgNadaParaExportar, fx.aviso(t, sess))

	scope, _ := sess.Scope()
	seed(t, fx, scope)

	data, err := exporter.ExportSession(ctx, sess)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, MsgExportada, fx.aviso(t, sess))
}

func TestExportSessionUnavailable(t *testing.T) {
	fx := newFixture(t)
	_, err := NewExporter(time.UTC, fx.notices, zerolog.Nop()).ExportSession(context.Background(), fx.unreadySession(t))
	require.ErrorIs(t, err, ErrIndisponivel)
}
