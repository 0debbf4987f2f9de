package demanda

import "strings"

// Scope identifica a coleção de demandas de uma identidade dentro da aplicação.
type Scope struct {
	AppID   string
	OwnerID string
}

// Valid indica se o escopo aponta para uma identidade.
func (s Scope) Valid() bool {
	return strings.TrimSpace(s.AppID) != "" && strings.TrimSpace(s.OwnerID) != ""
}

// Path devolve o caminho de armazenamento da coleção.
func (s Scope) Path() string {
	return "artifacts/" + s.AppID + "/users/" + s.OwnerID + "/demands"
}

func (s Scope) String() string {
	return s.Path()
}
