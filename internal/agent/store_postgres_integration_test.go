//go:build integration

package agent

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hearth/internal/storage"
	"hearth/pkg/testutil/containers"
)

type RegistrationPostgresSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestRegistrationPostgresSuite(t *testing.T) {
	suite.Run(t, new(RegistrationPostgresSuite))
}

func (s *RegistrationPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.Pool)
}

func (s *RegistrationPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *RegistrationPostgresSuite) newRegistration(userID string) *Registration {
	return &Registration{
		ID:                  uuid.NewString(),
		UserID:              userID,
		FirstName:           "Nadia",
		LastName:            "Haddad",
		DateOfBirth:         time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		NationalID:          "12345678",
		Phone:               "98765432",
		Address:             "12 Harbour Road",
		City:                "Tunis",
		PostalCode:          "1002",
		BankName:            "Coastal Bank",
		Position:            "Loan Officer",
		EmployeeID:          "445566",
		Department:          "Mortgage Lending",
		NationalIDDocRef:    "docs/national-id.pdf",
		EmploymentLetterRef: "docs/employment-letter.pdf",
		Status:              StatusPending,
		SubmittedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *RegistrationPostgresSuite) TestInsert() {
	s.Run("round-trips a registration", func() {
		reg := s.newRegistration("user-1")
		s.Require().NoError(s.store.Insert(s.ctx, reg))

		found, err := s.store.FindByID(s.ctx, reg.ID)
		s.Require().NoError(err)
		s.Equal(reg.UserID, found.UserID)
		s.Equal(reg.NationalID, found.NationalID)
		s.Equal(StatusPending, found.Status)
		s.Nil(found.ReviewedAt)
	})

	s.Run("enforces one registration per user", func() {
		s.Require().NoError(s.store.Insert(s.ctx, s.newRegistration("user-2")))

		err := s.store.Insert(s.ctx, s.newRegistration("user-2"))
		s.Require().ErrorIs(err, storage.ErrDuplicate)
	})

	s.Run("finds by user id", func() {
		reg := s.newRegistration("user-3")
		s.Require().NoError(s.store.Insert(s.ctx, reg))

		found, err := s.store.FindByUserID(s.ctx, "user-3")
		s.Require().NoError(err)
		s.Equal(reg.ID, found.ID)
	})
}

func (s *RegistrationPostgresSuite) TestListByStatus() {
	regA := s.newRegistration("user-4")
	regB := s.newRegistration("user-5")
	s.Require().NoError(s.store.Insert(s.ctx, regA))
	s.Require().NoError(s.store.Insert(s.ctx, regB))

	_, err := s.store.ApplyDecision(s.ctx, regB.ID, StatusPending, Decision{
		Status:     StatusApproved,
		ReviewedBy: "admin-1",
		ReviewedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	s.Run("filters by status", func() {
		pending, err := s.store.ListByStatus(s.ctx, StatusPending)
		s.Require().NoError(err)
		s.Len(pending, 1)
	})

	s.Run("empty status lists all", func() {
		all, err := s.store.ListByStatus(s.ctx, "")
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func (s *RegistrationPostgresSuite) TestApplyDecision() {
	decision := Decision{
		Status:          StatusRejected,
		ReviewedBy:      "admin-1",
		ReviewedAt:      time.Now().UTC().Truncate(time.Microsecond),
		RejectionReason: "employment letter unverifiable",
	}

	s.Run("applies when the pre-state matches", func() {
		reg := s.newRegistration("user-6")
		s.Require().NoError(s.store.Insert(s.ctx, reg))

		updated, err := s.store.ApplyDecision(s.ctx, reg.ID, StatusPending, decision)
		s.Require().NoError(err)
		s.Equal(StatusRejected, updated.Status)
		s.Equal("employment letter unverifiable", updated.RejectionReason)
		s.Require().NotNil(updated.ReviewedAt)
	})

	s.Run("returns ErrStaleState when the row already moved", func() {
		reg := s.newRegistration("user-7")
		s.Require().NoError(s.store.Insert(s.ctx, reg))

		_, err := s.store.ApplyDecision(s.ctx, reg.ID, StatusPending, decision)
		s.Require().NoError(err)

		_, err = s.store.ApplyDecision(s.ctx, reg.ID, StatusPending, decision)
		s.Require().ErrorIs(err, storage.ErrStaleState)
	})

	s.Run("returns ErrNotFound for a missing row", func() {
		_, err := s.store.ApplyDecision(s.ctx, uuid.NewString(), StatusPending, decision)
		s.ErrorIs(err, storage.ErrNotFound)
	})
}
