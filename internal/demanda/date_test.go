package demanda

import (
	"errors"
	"testing"
	"time"
)

func TestParseDataBRRoundTrip(t *testing.T) {
	for _, raw := range []string{"05/03/2024", "29/02/2024", "31/12/1999", "01/01/2030"} {
		parsed, err := ParseDataBR(raw)
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if parsed.Location() != time.UTC || parsed.Hour() != 0 {
			t.Fatalf("%s: esperava meia-noite UTC, veio %v", raw, parsed)
		}
		if got := FormatDataBR(&parsed); got != raw {
			t.Fatalf("round trip: %s virou %s", raw, got)
		}
	}
}

func TestParseDataBRRejects(t *testing.T) {
	for _, raw := range []string{"", "29/02/2023", "31/04/2024", "00/01/2024", "01/13/2024", "2024-03-05", "5/03/2024", "05/3/2024", "05/03/24", "05/03/2024/1"} {
		if _, err := ParseDataBR(raw); !errors.Is(err, ErrDataInvalida) {
			t.Fatalf("%q deveria ser inválida, veio %v", raw, err)
		}
	}
}

func TestFormatPlaceholders(t *testing.T) {
	if got := FormatDataBR(nil); got != Placeholder {
		t.Fatalf("esperava %s, veio %s", Placeholder, got)
	}
	if got := FormatDataHoraBR(nil, time.UTC); got != Placeholder {
		t.Fatalf("esperava %s, veio %s", Placeholder, got)
	}
}

func TestFormatDataHoraBRUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	instant := time.Date(2024, 3, 6, 2, 15, 9, 0, time.UTC)

	if got := FormatDataHoraBR(&instant, loc); got != "05/03/2024, 23:15:09" {
		t.Fatalf("formato inesperado: %s", got)
	}
	if got := FormatDataHoraBR(&instant, nil); got != "06/03/2024, 02:15:09" {
		t.Fatalf("formato inesperado em UTC: %s", got)
	}
}
