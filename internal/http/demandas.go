package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pluckstudio/demandas/internal/demanda"
	httpmiddleware "github.com/pluckstudio/demandas/internal/http/middleware"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/util"
)

func (h *Handler) form(r *http.Request) *painel.FormController {
	return painel.NewFormController(httpmiddleware.GetSession(r.Context()), h.drafts, h.notices, h.logger)
}

// aviso lê o aviso vigente para acompanhar a resposta; falhas viram "".
func (h *Handler) aviso(r *http.Request) string {
	scope, ok := httpmiddleware.GetSession(r.Context()).Scope()
	if !ok || h.notices == nil {
		return ""
	}
	msg, err := h.notices.Current(r.Context(), scope)
	if err != nil {
		return ""
	}
	return msg
}

// ListDemandas devolve a lista exibida no momento, já ordenada.
func (h *Handler) ListDemandas(w http.ResponseWriter, r *http.Request) {
	sess := httpmiddleware.GetSession(r.Context())
	scope, ok := sess.Scope()
	store := sess.Store()
	if !ok || store == nil {
		writePainelError(w, painel.ErrIndisponivel)
		return
	}

	records, err := store.List(r.Context(), scope)
	if err != nil {
		h.logger.Error().Err(err).Str("scope", scope.Path()).Msg("falha ao listar demandas")
		writePainelError(w, fmt.Errorf("%w: %w", painel.ErrCarregamento, err))
		return
	}

	WriteJSON(w, http.StatusOK, painel.Update{
		Demandas: demanda.ToViews(records, h.loc),
		Aviso:    h.aviso(r),
	})
}

// CreateDemanda valida e grava um rascunho completo enviado de uma vez.
func (h *Handler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	var draft demanda.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	id, err := h.form(r).SubmitDraft(r.Context(), draft)
	if err != nil {
		writePainelError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": id, "aviso": painel.MsgAdicionada})
}

// GetDraft devolve o rascunho do formulário.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.form(r).Draft(r.Context())
	if err != nil {
		writePainelError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"rascunho": draft})
}

// ChangeDraftField sobrescreve um campo do rascunho.
func (h *Handler) ChangeDraftField(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Campo string `json:"campo"`
		Valor string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if err := util.RequireString(payload.Campo, "campo"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	form := h.form(r)
	if err := form.OnFieldChange(r.Context(), payload.Campo, payload.Valor); err != nil {
		writePainelError(w, err)
		return
	}
	draft, err := form.Draft(r.Context())
	if err != nil {
		writePainelError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"rascunho": draft})
}

// SubmitDraft envia o rascunho guardado.
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	id, err := h.form(r).Submit(r.Context())
	if err != nil {
		writePainelError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": id, "aviso": painel.MsgAdicionada})
}

// queryConfirmer responde à confirmação com o parâmetro ?confirmar=sim.
type queryConfirmer struct {
	r *http.Request
}

func (q queryConfirmer) Confirm(ctx context.Context, pergunta string) (bool, error) {
	return util.Truthy(q.r.URL.Query().Get("confirmar")), nil
}

// DeleteDemanda exclui a demanda quando a requisição traz a confirmação.
// Sem ela, responde 428 com a pergunta a ser feita ao usuário.
func (h *Handler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	deleter := painel.NewDeleter(httpmiddleware.GetSession(r.Context()), h.notices, h.logger)

	deleted, err := deleter.Delete(r.Context(), chi.URLParam(r, "id"), queryConfirmer{r: r})
	if err != nil {
		writePainelError(w, err)
		return
	}
	if !deleted {
		WriteError(w, http.StatusPreconditionRequired, "CONFIRMATION", painel.PerguntaExclusao, nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"excluida": true, "aviso": painel.MsgExcluida})
}

// ExportDemandas baixa a planilha da lista atual.
func (h *Handler) ExportDemandas(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.ExportSession(r.Context(), httpmiddleware.GetSession(r.Context()))
	if err != nil {
		writePainelError(w, err)
		return
	}

	w.Header().Set("Content-Type", painel.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", painel.NomeArquivo))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// StreamDemandas mantém a lista ao vivo via SSE: "demandas" traz a lista
// inteira a cada mudança e "aviso" traz o aviso quando ele muda.
func (h *Handler) StreamDemandas(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "streaming não suportado", nil)
		return
	}

	sess := httpmiddleware.GetSession(r.Context())
	if !sess.Ready() || sess.Store() == nil {
		writePainelError(w, painel.ErrIndisponivel)
		return
	}

	list := painel.NewListSubscriber(sess, h.notices, h.loc, h.logger)
	defer list.Close()
	if err := list.Start(r.Context()); err != nil {
		writePainelError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	lastAviso := ""
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case u, ok := <-list.Updates():
			if !ok {
				return
			}
			if !sess.Ready() {
				writeEvent(w, "aviso", map[string]string{"aviso": painel.MsgSessaoInvalida})
				flusher.Flush()
				return
			}
			if err := writeEvent(w, "demandas", u.Demandas); err != nil {
				h.logger.Warn().Err(err).Msg("falha ao escrever evento")
				return
			}
			if u.Aviso != lastAviso {
				lastAviso = u.Aviso
				_ = writeEvent(w, "aviso", map[string]string{"aviso": u.Aviso})
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return errors.Join(errors.New("sse"), err)
	}
	return nil
}
