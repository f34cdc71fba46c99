package loan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hearth/internal/storage"
)

// PostgresStore persists applications in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const applicationColumns = `
	id, applicant_id, property_id, selected_bank_id, bank_agent_id,
	loan_amount, loan_term_years, interest_rate, monthly_payment,
	employment_status, annual_income, include_insurance,
	monthly_insurance_amount, identity_card_ref, proof_of_income_ref,
	status, bank_agent_decision, bank_agent_notes, created_at, updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var app Application
	err := row.Scan(
		&app.ID, &app.ApplicantID, &app.PropertyID, &app.SelectedBankID,
		&app.BankAgentID, &app.LoanAmount, &app.LoanTermYears,
		&app.InterestRate, &app.MonthlyPayment, &app.EmploymentStatus,
		&app.AnnualIncome, &app.IncludeInsurance, &app.MonthlyInsuranceAmount,
		&app.IdentityCardRef, &app.ProofOfIncomeRef, &app.Status,
		&app.BankAgentDecision, &app.BankAgentNotes, &app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *PostgresStore) Insert(ctx context.Context, app *Application) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO loan_applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		app.ID, app.ApplicantID, app.PropertyID, app.SelectedBankID,
		app.BankAgentID, app.LoanAmount, app.LoanTermYears,
		app.InterestRate, app.MonthlyPayment, app.EmploymentStatus,
		app.AnnualIncome, app.IncludeInsurance, app.MonthlyInsuranceAmount,
		app.IdentityCardRef, app.ProofOfIncomeRef, app.Status,
		app.BankAgentDecision, app.BankAgentNotes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Application, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error) {
	return s.list(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE applicant_id = $1 ORDER BY created_at`,
		applicantID)
}

func (s *PostgresStore) ListByAgent(ctx context.Context, agentID string) ([]*Application, error) {
	return s.list(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE bank_agent_id = $1 ORDER BY created_at`,
		agentID)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Application, error) {
	return s.list(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications ORDER BY created_at`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Application, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// ApplyDecision is a compare-and-swap: the UPDATE only matches while the row
// is still in one of the expected pre-states.
func (s *PostgresStore) ApplyDecision(ctx context.Context, id string, from []Status, d Decision) (*Application, error) {
	states := make([]string, len(from))
	for i, st := range from {
		states[i] = string(st)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE loan_applications
		SET status = $1, bank_agent_decision = $2, bank_agent_notes = $3, updated_at = $4
		WHERE id = $5 AND status = ANY($6)
		RETURNING `+applicationColumns,
		d.Status, d.DecisionText, d.Notes, d.DecidedAt, id, states,
	)
	app, err := scanApplication(row)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apply application decision: %w", err)
	}

	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, storage.ErrStaleState
}
