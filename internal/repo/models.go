package repo

import "time"

// Identidade registra uma identidade emitida pelo provedor.
type Identidade struct {
	AppID        string
	ID           string
	Origem       string
	CriadoEm     time.Time
	UltimoAcesso time.Time
}
