package demanda

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Placeholder exibido quando o registro não possui o timestamp.
	Placeholder = "N/A"

	layoutDataBR     = "02/01/2006"
	layoutDataHoraBR = "02/01/2006, 15:04:05"
)

// ParseDataBR interpreta DD/MM/AAAA reescrevendo como AAAA-MM-DD.
// Datas fora do calendário (31/02, 00/13) são rejeitadas.
func ParseDataBR(raw string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 4 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDataInvalida, raw)
	}
	iso := parts[2] + "-" + parts[1] + "-" + parts[0]
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDataInvalida, raw)
	}
	return t, nil
}

// FormatDataBR exibe a data da demanda como DD/MM/AAAA.
// A data é gravada como meia-noite UTC e por isso é formatada em UTC.
func FormatDataBR(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format(layoutDataBR)
}

// FormatDataHoraBR exibe um instante no fuso informado, no padrão pt-BR.
func FormatDataHoraBR(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layoutDataHoraBR)
}
