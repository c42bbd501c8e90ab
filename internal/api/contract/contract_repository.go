package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

const contractColumns = `id, owner_id, file_name, status, created_at, updated_at`

var _ ContractRepo = (*PostgresContractRepo)(nil)

// ContractRepo persists contract records for the signature workflow.
type ContractRepo interface {
	Create(ctx context.Context, ownerID uuid.UUID, fileName string) (*types.Contract, error)
	Get(ctx context.Context, contractID uuid.UUID) (*types.Contract, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Contract, error)
	UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error
}

// PostgresContractRepo implements ContractRepo.
type PostgresContractRepo struct {
	pgpool *pgxpool.Pool
}

func NewPostgresContractRepo(pgpool *pgxpool.Pool) *PostgresContractRepo {
	return &PostgresContractRepo{pgpool: pgpool}
}

func scanContract(row pgx.Row) (*types.Contract, error) {
	var c types.Contract
	err := row.Scan(&c.ID, &c.OwnerID, &c.FileName, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresContractRepo) Create(ctx context.Context, ownerID uuid.UUID, fileName string) (*types.Contract, error) {
	ctx, span := otel.Tracer("ContractRepo").Start(ctx, "Create")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "contracts"),
		attribute.String("db.user.id", ownerID.String()),
	)
	defer span.End()

	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO contracts (owner_id, file_name, status)
         VALUES ($1, $2, $3)
         RETURNING `+contractColumns,
		ownerID, fileName, types.ContractStatusUploaded)
	contract, err := scanContract(row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating contract: %w", err)
	}
	return contract, nil
}

func (r *PostgresContractRepo) Get(ctx context.Context, contractID uuid.UUID) (*types.Contract, error) {
	ctx, span := otel.Tracer("ContractRepo").Start(ctx, "Get")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "contracts"),
	)
	defer span.End()

	row := r.pgpool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, contractID)
	contract, err := scanContract(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "contract not found")
			return nil, fmt.Errorf("contract not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching contract: %w", err)
	}
	return contract, nil
}

func (r *PostgresContractRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Contract, error) {
	ctx, span := otel.Tracer("ContractRepo").Start(ctx, "ListByOwner")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "contracts"),
		attribute.String("db.user.id", ownerID.String()),
	)
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts
         WHERE owner_id = $1
         ORDER BY created_at DESC`, ownerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*types.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning contract: %w", err)
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating contracts: %w", err)
	}
	return contracts, nil
}

func (r *PostgresContractRepo) UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error {
	ctx, span := otel.Tracer("ContractRepo").Start(ctx, "UpdateStatus")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "contracts"),
		attribute.String("contract.status", status),
	)
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE contracts SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, contractID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating contract status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract not found: %w", types.ErrNotFound)
	}
	return nil
}
