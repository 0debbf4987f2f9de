package demanda

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore grava demandas na tabela demandas, isoladas por (app_id, owner_id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore cria instância do repositório.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create insere a demanda e devolve o id gerado pelo banco.
func (s *PostgresStore) Create(ctx context.Context, scope Scope, d Demanda) (string, error) {
	if !scope.Valid() {
		return "", ErrEscopoInvalido
	}

	const query = `
        INSERT INTO demandas (app_id, owner_id, demanda, tipo_servico, prioridade, prazo,
                              secretaria_responsavel, status, detalhes, observacoes, data_demanda, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `

	var id string
	err := s.pool.QueryRow(ctx, query,
		scope.AppID,
		scope.OwnerID,
		d.Demanda,
		d.TipoServico,
		string(d.Prioridade),
		d.Prazo,
		d.SecretariaResponsavel,
		string(d.Status),
		d.Detalhes,
		d.Observacoes,
		d.DataDemanda,
		d.CriadoEm,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserir demanda: %w", err)
	}
	return id, nil
}

// Delete remove a demanda do escopo. Remover um id inexistente não é erro.
func (s *PostgresStore) Delete(ctx context.Context, scope Scope, id string) error {
	if !scope.Valid() {
		return ErrEscopoInvalido
	}

	const query = `DELETE FROM demandas WHERE app_id = $1 AND owner_id = $2 AND id = $3`
	if _, err := s.pool.Exec(ctx, query, scope.AppID, scope.OwnerID, id); err != nil {
		return fmt.Errorf("excluir demanda: %w", err)
	}
	return nil
}

// List devolve todas as demandas do escopo, sem ordenação.
func (s *PostgresStore) List(ctx context.Context, scope Scope) ([]Demanda, error) {
	if !scope.Valid() {
		return nil, ErrEscopoInvalido
	}

	const query = `
        SELECT id, demanda, tipo_servico, prioridade, prazo, secretaria_responsavel,
               status, detalhes, observacoes, data_demanda, created_at
        FROM demandas
        WHERE app_id = $1 AND owner_id = $2
    `

	rows, err := s.pool.Query(ctx, query, scope.AppID, scope.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("listar demandas: %w", err)
	}
	defer rows.Close()

	var out []Demanda
	for rows.Next() {
		d, err := scanDemanda(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listar demandas: %w", err)
	}
	return out, nil
}

func scanDemanda(row pgx.Row) (Demanda, error) {
	var (
		d          Demanda
		prioridade string
		status     string
	)
	err := row.Scan(
		&d.ID,
		&d.Demanda,
		&d.TipoServico,
		&prioridade,
		&d.Prazo,
		&d.SecretariaResponsavel,
		&status,
		&d.Detalhes,
		&d.Observacoes,
		&d.DataDemanda,
		&d.CriadoEm,
	)
	if err != nil {
		return Demanda{}, fmt.Errorf("ler demanda: %w", err)
	}
	d.Prioridade = Prioridade(prioridade)
	d.Status = Status(status)
	return d, nil
}
