package demanda

import (
	"errors"
	"testing"
	"time"
)

func baseDraft() Draft {
	return Draft{
		Demanda:               "  Reparo de calçada  ",
		SecretariaResponsavel: "Obras",
		DataDemanda:           " 10/10/2024 ",
		Prioridade:            "Média",
		Status:                "Em Andamento",
	}
}

func TestBuildTrimsAndStamps(t *testing.T) {
	now := time.Date(2024, 10, 11, 12, 0, 0, 0, time.FixedZone("BRT", -3*60*60))

	rec, err := baseDraft().Build(now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rec.Demanda != "Reparo de calçada" {
		t.Fatalf("demanda não aparada: %q", rec.Demanda)
	}
	if rec.DataDemanda == nil || !rec.DataDemanda.Equal(time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("data inesperada: %v", rec.DataDemanda)
	}
	if rec.CriadoEm == nil || rec.CriadoEm.Location() != time.UTC || !rec.CriadoEm.Equal(now) {
		t.Fatalf("criadoEm inesperado: %v", rec.CriadoEm)
	}
	if rec.ID != "" {
		t.Fatalf("id deve ser atribuído pelo armazenamento")
	}
}

func TestBuildValidationOrder(t *testing.T) {
	d := Draft{Prioridade: "x", Status: "y", DataDemanda: "errada"}
	if _, err := d.Build(time.Now()); !errors.Is(err, ErrDemandaObrigatoria) {
		t.Fatalf("primeira regra deve ser a demanda, veio %v", err)
	}

	d.Demanda = "algo"
	d.SecretariaResponsavel = "Saúde"
	if _, err := d.Build(time.Now()); !errors.Is(err, ErrDataInvalida) {
		t.Fatalf("data inválida deve vir antes dos enums, veio %v", err)
	}

	d.DataDemanda = "01/01/2024"
	if _, err := d.Build(time.Now()); !errors.Is(err, ErrPrioridadeInvalida) {
		t.Fatalf("esperava prioridade inválida, veio %v", err)
	}

	d.Prioridade = ""
	if _, err := d.Build(time.Now()); !errors.Is(err, ErrStatusInvalido) {
		t.Fatalf("esperava status inválido, veio %v", err)
	}
}

func TestDraftSetAndFields(t *testing.T) {
	var d Draft
	if err := d.Set(CampoObservacoes, "ligar antes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := d.Set("inexistente", "x"); !errors.Is(err, ErrCampoDesconhecido) {
		t.Fatalf("esperava campo desconhecido, veio %v", err)
	}

	fields := d.Fields()
	if len(fields) != len(Campos) {
		t.Fatalf("fields deve ter todos os campos: %v", fields)
	}
	if fields[CampoObservacoes] != "ligar antes" {
		t.Fatalf("valor perdido: %v", fields)
	}

	if back := DraftFromFields(fields); back != d {
		t.Fatalf("DraftFromFields divergente: %+v", back)
	}
}
