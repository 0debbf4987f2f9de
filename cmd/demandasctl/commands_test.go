package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluckstudio/demandas/internal/painel"
)

func TestPromptConfirmer(t *testing.T) {
	cases := map[string]bool{
		"s\n":      true,
		"SIM\n":    true,
		"n\n":      false,
		"\n":       false,
		"":         false,
		"talvez\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		ok, err := promptConfirmer(strings.NewReader(input), &out).Confirm(context.Background(), painel.PerguntaExclusao)
		require.NoError(t, err, input)
		assert.Equal(t, want, ok, input)
		assert.Contains(t, out.String(), painel.PerguntaExclusao)
	}
}

func TestOperatorProviderResumesFixedOwner(t *testing.T) {
	p := operatorProvider{owner: "secretaria-obras"}

	id, err := p.Resume(context.Background(), origemOperador)
	require.NoError(t, err)
	assert.Equal(t, "secretaria-obras", id.ID)
	assert.Equal(t, origemOperador, id.Origem)

	_, err = p.SignInAnonymous(context.Background())
	assert.ErrorIs(t, err, errOperador)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"schema", "listar", "exportar", "excluir", "token"})
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("CUSTOM_TOKEN_SECRET", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"token", "--dono", "secretaria-obras"})
	assert.Error(t, root.Execute())
}

func TestTokenCommandIssuesToken(t *testing.T) {
	t.Setenv("CUSTOM_TOKEN_SECRET", "segredo-de-teste-com-tamanho-suficiente")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--dono", "secretaria-obras"})
	require.NoError(t, root.Execute())
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out.String()), "."))
}
