package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowHeaders  = "Authorization, Content-Type, X-Requested-With"
	corsAllowMethods  = "GET,POST,PATCH,DELETE,OPTIONS"
	corsExposeHeaders = "Content-Disposition"
)

// originPolicy guarda as origens aceitas vindas de ALLOW_ORIGINS: entradas
// exatas (https://demandas.angicos.rn.gov.br) e sufixos de subdomínio
// (*.angicos.rn.gov.br, que não aceita o domínio raiz).
type originPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

func newOriginPolicy(entries []string) originPolicy {
	p := originPolicy{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case strings.HasPrefix(entry, "*."):
			p.suffixes = append(p.suffixes, strings.ToLower(entry[1:]))
		default:
			p.exact[entry] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	if len(p.suffixes) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) && host != suffix[1:] {
			return true
		}
	}
	return false
}

// CORS libera o painel hospedado nas origens configuradas, com cookies, e expõe
// Content-Disposition para o download da planilha.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
