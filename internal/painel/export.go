package painel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/sessao"
)

const (
	// NomeArquivo é o nome fixo da planilha baixada.
	NomeArquivo = "Demandas_Angicos.xlsx"
	// NomePlanilha é a única aba da pasta de trabalho.
	NomePlanilha = "Demandas"
	// ContentTypeXLSX é o tipo MIME da pasta de trabalho.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	larguraColuna = 24.0
)

// Cabecalho é a primeira linha da planilha, na ordem das colunas.
var Cabecalho = []string{
	"DEMANDA",
	"TIPO DE SERVIÇO",
	"PRIORIDADE",
	"PRAZO",
	"SECRETARIA RESPONSÁVEL",
	"STATUS",
	"DETALHES",
	"OBSERVAÇÕES",
	"DATA DA DEMANDA",
}

// Exporter gera a planilha da lista exibida.
type Exporter struct {
	loc     *time.Location
	notices Notices
	logger  zerolog.Logger
}

// NewExporter cria o exportador; loc é o fuso usado para montar a lista.
func NewExporter(loc *time.Location, notices Notices, logger zerolog.Logger) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{loc: loc, notices: notices, logger: logger.With().Str("component", "exportacao").Logger()}
}

// Export monta a pasta de trabalho com uma linha por demanda, na ordem recebida.
// Lista vazia não gera arquivo.
func (e *Exporter) Export(views []demanda.View) ([]byte, error) {
	if len(views) == 0 {
		return nil, ErrNadaParaExportar
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), NomePlanilha); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
	}

	header := make([]any, len(Cabecalho))
	for i, h := range Cabecalho {
		header[i] = h
	}
	if err := f.SetSheetRow(NomePlanilha, "A1", &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
		}
		row := exportRow(v)
		if err := f.SetSheetRow(NomePlanilha, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%w: estilo do cabeçalho: %w", ErrExportacao, err)
	}
	if err := f.SetRowStyle(NomePlanilha, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("%w: estilo do cabeçalho: %w", ErrExportacao, err)
	}
	if err := f.SetColWidth(NomePlanilha, "A", "I", larguraColuna); err != nil {
		return nil, fmt.Errorf("%w: largura das colunas: %w", ErrExportacao, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
	}
	return buf.Bytes(), nil
}

// ExportSession lê a lista atual da sessão, gera a planilha e publica o aviso
// correspondente ao resultado.
func (e *Exporter) ExportSession(ctx context.Context, sess *sessao.Session) ([]byte, error) {
	scope, ok := sess.Scope()
	store := sess.Store()
	if !ok || store == nil {
		return nil, ErrIndisponivel
	}

	records, err := store.List(ctx, scope)
	if err != nil {
		e.logger.Error().Err(err).Str("scope", scope.Path()).Msg("falha ao ler demandas para exportação")
		announce(ctx, e.notices, scope, MsgErroExportacao, e.logger)
		return nil, fmt.Errorf("%w: %w", ErrExportacao, err)
	}

	data, err := e.Export(demanda.ToViews(records, e.loc))
	if err != nil {
		if !errors.Is(err, ErrNadaParaExportar) {
			e.logger.Error().Err(err).Str("scope", scope.Path()).Msg("falha ao exportar planilha")
		}
		announce(ctx, e.notices, scope, Mensagem(err), e.logger)
		return nil, err
	}

	e.logger.Info().Str("scope", scope.Path()).Int("linhas", len(records)).Msg("planilha exportada")
	announce(ctx, e.notices, scope, MsgExportada, e.logger)
	return data, nil
}

// A data ausente vira célula vazia na planilha, nunca o marcador de exibição.
func exportRow(v demanda.View) []any {
	data := ""
	if v.Data != nil {
		data = v.DataDemanda
	}
	return []any{
		v.Demanda,
		v.TipoServico,
		v.Prioridade,
		v.Prazo,
		v.SecretariaResponsavel,
		v.Status,
		v.Detalhes,
		v.Observacoes,
		data,
	}
}
