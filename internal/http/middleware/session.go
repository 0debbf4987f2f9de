package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pluckstudio/demandas/internal/sessao"
)

type contextKey string

const ContextKeySession contextKey = "sessao"

// SessionCookie é o cookie que carrega o token de sessão.
const SessionCookie = "demandas_sessao"

// Resumer retoma sessões a partir do token da requisição.
type Resumer interface {
	Resume(ctx context.Context, sessionToken string) (*sessao.Session, error)
}

// Session resolve a sessão da requisição (cookie ou Bearer) e a injeta no
// contexto. Sessões inválidas seguem adiante como "não prontas"; cabe ao
// handler decidir a resposta. A sessão é fechada ao fim da requisição.
func Session(resumer Resumer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resumer.Resume(r.Context(), TokenFromRequest(r))
			if err != nil && !errors.Is(err, sessao.ErrSessaoInvalida) {
				log.Warn().Err(err).Msg("falha ao retomar sessão")
			}
			if sess != nil {
				defer sess.Close()
			}

			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extrai o token do header Authorization ou do cookie de sessão.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// WithSession injeta a sessão no contexto.
func WithSession(ctx context.Context, sess *sessao.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, sess)
}

// GetSession recupera a sessão do contexto.
func GetSession(ctx context.Context) *sessao.Session {
	val, _ := ctx.Value(ContextKeySession).(*sessao.Session)
	return val
}

// GetSubject devolve a identidade da sessão do contexto, se pronta.
func GetSubject(ctx context.Context) string {
	sess := GetSession(ctx)
	if sess == nil || !sess.Ready() {
		return ""
	}
	return sess.Identity().ID
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
