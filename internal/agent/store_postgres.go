package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hearth/internal/storage"
)

// PostgresStore persists registrations in PostgreSQL. The table carries a
// unique index on user_id so insert-if-absent is enforced by the database,
// not by a read-then-write.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const registrationColumns = `
	id, user_id, first_name, last_name, date_of_birth, national_id, phone,
	address, city, postal_code, bank_name, position, employee_id, department,
	work_address, supervisor_name, supervisor_phone, national_id_doc_ref,
	employment_letter_ref, status, submitted_at, reviewed_at, reviewed_by,
	admin_notes, rejection_reason`

func scanRegistration(row pgx.Row) (*Registration, error) {
	var reg Registration
	err := row.Scan(
		&reg.ID, &reg.UserID, &reg.FirstName, &reg.LastName, &reg.DateOfBirth,
		&reg.NationalID, &reg.Phone, &reg.Address, &reg.City, &reg.PostalCode,
		&reg.BankName, &reg.Position, &reg.EmployeeID, &reg.Department,
		&reg.WorkAddress, &reg.SupervisorName, &reg.SupervisorPhone,
		&reg.NationalIDDocRef, &reg.EmploymentLetterRef, &reg.Status,
		&reg.SubmittedAt, &reg.ReviewedAt, &reg.ReviewedBy, &reg.AdminNotes,
		&reg.RejectionReason,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *PostgresStore) Insert(ctx context.Context, reg *Registration) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO bank_agent_registrations (`+registrationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (user_id) DO NOTHING`,
		reg.ID, reg.UserID, reg.FirstName, reg.LastName, reg.DateOfBirth,
		reg.NationalID, reg.Phone, reg.Address, reg.City, reg.PostalCode,
		reg.BankName, reg.Position, reg.EmployeeID, reg.Department,
		reg.WorkAddress, reg.SupervisorName, reg.SupervisorPhone,
		reg.NationalIDDocRef, reg.EmploymentLetterRef, reg.Status,
		reg.SubmittedAt, reg.ReviewedAt, reg.ReviewedBy, reg.AdminNotes,
		reg.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicate
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Registration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM bank_agent_registrations WHERE id = $1`, id)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID string) (*Registration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM bank_agent_registrations WHERE user_id = $1`, userID)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find registration by user: %w", err)
	}
	return reg, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM bank_agent_registrations`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// ApplyDecision is a compare-and-swap on status: the UPDATE only matches while
// the row is still in the expected pre-state, so concurrent decisions cannot
// double-apply.
func (s *PostgresStore) ApplyDecision(ctx context.Context, id string, from Status, d Decision) (*Registration, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE bank_agent_registrations
		SET status = $1, reviewed_at = $2, reviewed_by = $3, admin_notes = $4, rejection_reason = $5
		WHERE id = $6 AND status = $7
		RETURNING `+registrationColumns,
		d.Status, d.ReviewedAt, d.ReviewedBy, d.AdminNotes, d.RejectionReason, id, from,
	)
	reg, err := scanRegistration(row)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apply registration decision: %w", err)
	}

	// Nothing matched: distinguish a missing record from a lost race.
	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, storage.ErrStaleState
}
