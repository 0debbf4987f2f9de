package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indica identidade inexistente para o app.
var ErrNotFound = errors.New("identidade não encontrada")

// DBTX é satisfeito por *pgxpool.Pool e por pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries agrupa as consultas de identidade.
type Queries struct {
	db DBTX
}

// New cria o repositório sobre o pool ou transação informada.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// InsertIdentidade grava uma identidade nova; falha se o id já existe.
func (q *Queries) InsertIdentidade(ctx context.Context, id Identidade) (Identidade, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO identidades (app_id, id, origem, criado_em, ultimo_acesso)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING app_id, id, origem, criado_em, ultimo_acesso`,
		id.AppID, id.ID, id.Origem, id.CriadoEm)
	out, err := scanIdentidade(row)
	if err != nil {
		return Identidade{}, fmt.Errorf("inserir identidade: %w", err)
	}
	return out, nil
}

// UpsertIdentidade grava a identidade ou atualiza o último acesso se ela já existe.
func (q *Queries) UpsertIdentidade(ctx context.Context, id Identidade) (Identidade, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO identidades (app_id, id, origem, criado_em, ultimo_acesso)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (app_id, id) DO UPDATE SET ultimo_acesso = EXCLUDED.ultimo_acesso
		RETURNING app_id, id, origem, criado_em, ultimo_acesso`,
		id.AppID, id.ID, id.Origem, id.CriadoEm)
	out, err := scanIdentidade(row)
	if err != nil {
		return Identidade{}, fmt.Errorf("gravar identidade: %w", err)
	}
	return out, nil
}

// GetIdentidade busca a identidade pelo id dentro da aplicação.
func (q *Queries) GetIdentidade(ctx context.Context, appID, id string) (Identidade, error) {
	row := q.db.QueryRow(ctx, `
		SELECT app_id, id, origem, criado_em, ultimo_acesso
		FROM identidades
		WHERE app_id = $1 AND id = $2`, appID, id)
	out, err := scanIdentidade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Identidade{}, ErrNotFound
	}
	if err != nil {
		return Identidade{}, fmt.Errorf("buscar identidade: %w", err)
	}
	return out, nil
}

// TouchIdentidade atualiza o último acesso.
func (q *Queries) TouchIdentidade(ctx context.Context, appID, id string, at time.Time) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE identidades SET ultimo_acesso = $3
		WHERE app_id = $1 AND id = $2`, appID, id, at)
	if err != nil {
		return fmt.Errorf("atualizar identidade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIdentidade(row pgx.Row) (Identidade, error) {
	var out Identidade
	err := row.Scan(&out.AppID, &out.ID, &out.Origem, &out.CriadoEm, &out.UltimoAcesso)
	return out, err
}
