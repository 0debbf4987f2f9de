package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	httpmiddleware "github.com/pluckstudio/demandas/internal/http/middleware"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/sessao"
)

type identityResponse struct {
	ID       string    `json:"id"`
	Origem   string    `json:"origem"`
	ExpiraEm time.Time `json:"expira_em"`
}

// StartSession estabelece a identidade da sessão: reaproveita o token vigente,
// troca um token customizado ou entra anonimamente.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
			return
		}
	}

	sess, err := h.boot.Start(r.Context(), httpmiddleware.TokenFromRequest(r), strings.TrimSpace(payload.Token))
	defer sess.Close()
	if err != nil {
		h.logger.Error().Err(err).Msg("falha ao estabelecer sessão")
		writePainelError(w, err)
		return
	}

	id := sess.Identity()
	h.setSessionCookie(w, id.Token, id.ExpiresAt)
	WriteJSON(w, http.StatusOK, map[string]any{
		"identidade": identityResponse{ID: id.ID, Origem: id.Origem, ExpiraEm: id.ExpiresAt},
		"token":      id.Token,
	})
}

// EndSession revoga o token atual e limpa o cookie.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if token := httpmiddleware.TokenFromRequest(r); token != "" {
		if err := h.boot.SignOut(r.Context(), token); err != nil && !errors.Is(err, sessao.ErrSessaoInvalida) {
			h.logger.Error().Err(err).Msg("falha ao encerrar sessão")
			WriteError(w, http.StatusInternalServerError, "INTERNAL", painel.MsgErroInesperado, nil)
			return
		}
	}

	h.clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "encerrada"})
}

// CurrentNotice devolve o aviso vigente da identidade.
func (h *Handler) CurrentNotice(w http.ResponseWriter, r *http.Request) {
	sess := httpmiddleware.GetSession(r.Context())
	scope, ok := sess.Scope()
	if !ok {
		writePainelError(w, painel.ErrIndisponivel)
		return
	}

	msg, err := h.notices.Current(r.Context(), scope)
	if err != nil {
		h.logger.Error().Err(err).Msg("falha ao ler aviso")
		writePainelError(w, painel.ErrIndisponivel)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"aviso": msg})
}
