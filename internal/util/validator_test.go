package util

import "testing"

func TestTruthy(t *testing.T) {
	for _, v := range []string{"sim", "S", " true ", "1", "yes"} {
		if !Truthy(v) {
			t.Fatalf("esperava afirmativo para %q", v)
		}
	}
	for _, v := range []string{"", "não", "n", "0", "talvez"} {
		if Truthy(v) {
			t.Fatalf("esperava negativo para %q", v)
		}
	}
}

func TestRequireString(t *testing.T) {
	if err := RequireString("  ", "campo"); err == nil || err.Error() != "campo obrigatório" {
		t.Fatalf("erro inesperado: %v", err)
	}
	if err := RequireString("demanda", "campo"); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
}
