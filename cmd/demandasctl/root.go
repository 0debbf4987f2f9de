package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	appID string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "demandasctl",
		Short:        "Operação das Demandas Angicos",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.appID, "app", envOr("APP_ID", "default-app-id"), "identificador da aplicação")

	cmd.AddCommand(
		newSchemaCmd(),
		newListCmd(opts),
		newExportCmd(opts),
		newDeleteCmd(opts),
		newTokenCmd(),
	)
	return cmd
}

func envOr(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
