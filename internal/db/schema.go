package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createIdentidadesSQL = `
CREATE TABLE IF NOT EXISTS identidades (
    app_id        TEXT NOT NULL,
    id            TEXT NOT NULL,
    origem        TEXT NOT NULL,
    criado_em     TIMESTAMPTZ NOT NULL DEFAULT now(),
    ultimo_acesso TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (app_id, id)
)`

const createDemandasSQL = `
CREATE TABLE IF NOT EXISTS demandas (
    id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
    app_id                 TEXT NOT NULL,
    owner_id               TEXT NOT NULL,
    demanda                TEXT NOT NULL,
    tipo_servico           TEXT NOT NULL DEFAULT '',
    prioridade             TEXT NOT NULL DEFAULT '',
    prazo                  TEXT NOT NULL DEFAULT '',
    secretaria_responsavel TEXT NOT NULL,
    status                 TEXT NOT NULL DEFAULT '',
    detalhes               TEXT NOT NULL DEFAULT '',
    observacoes            TEXT NOT NULL DEFAULT '',
    data_demanda           TIMESTAMPTZ,
    created_at             TIMESTAMPTZ
)`

const createDemandasOwnerIdx = `
CREATE INDEX IF NOT EXISTS demandas_owner_idx ON demandas (app_id, owner_id)`

// EnsureSchema cria as tabelas usadas pelo serviço caso ainda não existam.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(pctx context.Context, tx pgx.Tx) error {
		for _, stmt := range []string{createIdentidadesSQL, createDemandasSQL, createDemandasOwnerIdx} {
			if _, err := tx.Exec(pctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
