package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pluckstudio/demandas/internal/auth"
	"github.com/pluckstudio/demandas/internal/db"
	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/util"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Cria as tabelas caso não existam",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			log.Info().Msg("schema pronto")
			return nil
		},
	}
}

func newListCmd(root *rootOptions) *cobra.Command {
	var dono string

	cmd := &cobra.Command{
		Use:   "listar",
		Short: "Lista as demandas de uma identidade, mais recentes primeiro",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			sess, err := b.session(cmd.Context(), root.appID, dono)
			if err != nil {
				return err
			}
			defer sess.Close()

			scope, _ := sess.Scope()
			records, err := sess.Store().List(cmd.Context(), scope)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), demanda.ToViews(records, b.loc))
		},
	}
	cmd.Flags().StringVar(&dono, "dono", "", "identidade dona das demandas (obrigatório)")
	_ = cmd.MarkFlagRequired("dono")
	return cmd
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		dono  string
		saida string
	)

	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Gera a planilha das demandas de uma identidade",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			sess, err := b.session(cmd.Context(), root.appID, dono)
			if err != nil {
				return err
			}
			defer sess.Close()

			data, err := painel.NewExporter(b.loc, b.notices, log.Logger).ExportSession(cmd.Context(), sess)
			if err != nil {
				return fmt.Errorf("%s: %w", painel.Mensagem(err), err)
			}
			if err := os.WriteFile(saida, data, 0o644); err != nil {
				return err
			}
			log.Info().Str("arquivo", saida).Int("bytes", len(data)).Msg(painel.MsgExportada)
			return nil
		},
	}
	cmd.Flags().StringVar(&dono, "dono", "", "identidade dona das demandas (obrigatório)")
	cmd.Flags().StringVar(&saida, "saida", painel.NomeArquivo, "arquivo de saída")
	_ = cmd.MarkFlagRequired("dono")
	return cmd
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	var (
		dono string
		id   string
		sim  bool
	)

	cmd := &cobra.Command{
		Use:   "excluir",
		Short: "Exclui uma demanda após confirmação",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			sess, err := b.session(cmd.Context(), root.appID, dono)
			if err != nil {
				return err
			}
			defer sess.Close()

			confirmer := painel.Always(true)
			if !sim {
				confirmer = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			deleted, err := painel.NewDeleter(sess, b.notices, log.Logger).Delete(cmd.Context(), id, confirmer)
			if err != nil {
				return fmt.Errorf("%s: %w", painel.Mensagem(err), err)
			}
			if !deleted {
				fmt.Fprintln(cmd.ErrOrStderr(), "exclusão cancelada")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), painel.MsgExcluida)
			return nil
		},
	}
	cmd.Flags().StringVar(&dono, "dono", "", "identidade dona da demanda (obrigatório)")
	cmd.Flags().StringVar(&id, "id", "", "id da demanda (obrigatório)")
	cmd.Flags().BoolVar(&sim, "sim", false, "não pedir confirmação")
	_ = cmd.MarkFlagRequired("dono")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// promptConfirmer pergunta no terminal; qualquer resposta fora de sim/s recusa.
func promptConfirmer(in io.Reader, out io.Writer) painel.Confirmer {
	reader := bufio.NewReader(in)
	return painel.ConfirmFunc(func(ctx context.Context, pergunta string) (bool, error) {
		fmt.Fprintf(out, "%s [s/N]: ", pergunta)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		return util.Truthy(strings.TrimSpace(line)), nil
	})
}

func newTokenCmd() *cobra.Command {
	var (
		dono     string
		validade time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um token customizado para entrar como uma identidade fixa",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := auth.NewCustomTokens(os.Getenv("CUSTOM_TOKEN_SECRET"))
			token, err := tokens.Issue(dono, validade)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&dono, "dono", "", "identidade do token (obrigatório)")
	cmd.Flags().DurationVar(&validade, "validade", 24*time.Hour, "validade do token")
	_ = cmd.MarkFlagRequired("dono")
	return cmd
}
