package agent

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hearth/internal/audit"
	dErrors "hearth/pkg/domain-errors"
)

type RegistrationServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryStore
	sink    *audit.InMemorySink
	service *Service
	now     time.Time
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.sink = audit.NewInMemorySink()
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	s.service = NewService(s.store, audit.NewPublisher(s.sink), nil, slog.Default(), 20)
	s.service.now = func() time.Time { return s.now }
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		FirstName:           "Nadia",
		LastName:            "Haddad",
		DateOfBirth:         "15/06/1990",
		NationalID:          "12345678",
		Phone:               "98765432",
		Address:             "12 Harbour Road",
		City:                "Tunis",
		PostalCode:          "1002",
		BankName:            "Coastal Bank",
		Position:            "Loan Officer",
		EmployeeID:          "445566",
		Department:          "Mortgage Lending",
		WorkAddress:         "1 Bank Plaza",
		SupervisorName:      "Omar Trabelsi",
		SupervisorPhone:     "71234567",
		NationalIDDocRef:    "docs/national-id.pdf",
		EmploymentLetterRef: "docs/employment-letter.pdf",
	}
}

func (s *RegistrationServiceSuite) TestSubmit() {
	s.Run("valid submission is persisted as pending", func() {
		reg, err := s.service.Submit(s.ctx, "user-1", validSubmitInput())
		s.Require().NoError(err)
		s.Equal(StatusPending, reg.Status)
		s.NotEmpty(reg.ID)
		s.Equal(s.now, reg.SubmittedAt)
		s.Nil(reg.ReviewedAt)

		stored, err := s.store.FindByUserID(s.ctx, "user-1")
		s.Require().NoError(err)
		s.Equal(reg.ID, stored.ID)

		events := s.sink.Events()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionRegistrationSubmitted, events[0].Action)
		s.Equal(reg.ID, events[0].EntityID)
	})

	s.Run("collects every field failure in one report", func() {
		in := validSubmitInput()
		in.FirstName = ""
		in.NationalID = "1234"
		in.Phone = "abc"
		in.EmployeeID = "12345"
		in.PostalCode = "99"

		_, err := s.service.Submit(s.ctx, "user-2", in)
		s.Require().Error(err)

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.Contains(de.Fields, "first_name")
		s.Contains(de.Fields, "national_id")
		s.Contains(de.Fields, "phone")
		s.Contains(de.Fields, "employee_id")
		s.Contains(de.Fields, "postal_code")

		// Nothing persisted on a validation failure.
		_, findErr := s.store.FindByUserID(s.ctx, "user-2")
		s.Error(findErr)
	})

	s.Run("empty postal code is accepted", func() {
		in := validSubmitInput()
		in.PostalCode = ""
		reg, err := s.service.Submit(s.ctx, "user-3", in)
		s.Require().NoError(err)
		s.Equal("", reg.PostalCode)
	})

	s.Run("underage candidate is rejected", func() {
		in := validSubmitInput()
		in.DateOfBirth = "16/03/2006" // turns 20 the day after s.now

		_, err := s.service.Submit(s.ctx, "user-4", in)
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Contains(de.Fields, "date_of_birth")
	})

	s.Run("candidate turning 20 today is accepted", func() {
		in := validSubmitInput()
		in.DateOfBirth = "15/03/2006"

		reg, err := s.service.Submit(s.ctx, "user-5", in)
		s.Require().NoError(err)
		s.Equal(20, s.service.Age(reg))
	})

	s.Run("second submission for the same user conflicts", func() {
		_, err := s.service.Submit(s.ctx, "user-6", validSubmitInput())
		s.Require().NoError(err)

		_, err = s.service.Submit(s.ctx, "user-6", validSubmitInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing documents fail validation", func() {
		in := validSubmitInput()
		in.NationalIDDocRef = ""
		in.EmploymentLetterRef = ""

		_, err := s.service.Submit(s.ctx, "user-7", in)
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Contains(de.Fields, "national_id_doc")
		s.Contains(de.Fields, "employment_letter")
	})
}

func (s *RegistrationServiceSuite) TestDecide() {
	submit := func(userID string) *Registration {
		reg, err := s.service.Submit(s.ctx, userID, validSubmitInput())
		s.Require().NoError(err)
		return reg
	}

	s.Run("approves a pending registration", func() {
		reg := submit("approve-user")

		decided, err := s.service.Decide(s.ctx, reg.ID, StatusApproved, "admin-1", "looks good", "")
		s.Require().NoError(err)
		s.Equal(StatusApproved, decided.Status)
		s.Equal("admin-1", decided.ReviewedBy)
		s.Require().NotNil(decided.ReviewedAt)
		s.Equal(s.now, *decided.ReviewedAt)
	})

	s.Run("rejection requires a reason", func() {
		reg := submit("reject-user")

		_, err := s.service.Decide(s.ctx, reg.ID, StatusRejected, "admin-1", "", "")
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.Contains(de.Fields, "rejection_reason")

		decided, err := s.service.Decide(s.ctx, reg.ID, StatusRejected, "admin-1", "", "employment letter unverifiable")
		s.Require().NoError(err)
		s.Equal(StatusRejected, decided.Status)
		s.Equal("employment letter unverifiable", decided.RejectionReason)
	})

	s.Run("second decision on a decided registration fails and first sticks", func() {
		reg := submit("double-user")

		_, err := s.service.Decide(s.ctx, reg.ID, StatusApproved, "admin-1", "", "")
		s.Require().NoError(err)

		_, err = s.service.Decide(s.ctx, reg.ID, StatusRejected, "admin-2", "", "changed my mind")
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(dErrors.CodeInvalidTransition, de.Code)
		s.Equal("approved", de.FromState)
		s.Equal("rejected", de.ToState)

		current, err := s.service.Get(s.ctx, reg.ID)
		s.Require().NoError(err)
		s.Equal(StatusApproved, current.Status)
		s.Equal("admin-1", current.ReviewedBy)
	})

	s.Run("outcome other than approved or rejected is a bad request", func() {
		reg := submit("bad-outcome-user")

		_, err := s.service.Decide(s.ctx, reg.ID, StatusPending, "admin-1", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("decision emits an audit event with the outcome", func() {
		reg := submit("audit-user")

		_, err := s.service.Decide(s.ctx, reg.ID, StatusApproved, "admin-1", "", "")
		s.Require().NoError(err)

		events := s.sink.Events()
		last := events[len(events)-1]
		s.Equal(audit.ActionRegistrationDecided, last.Action)
		s.Equal("approved", last.Outcome)
		s.Equal("admin-1", last.Actor)
	})
}

func (s *RegistrationServiceSuite) TestList() {
	_, err := s.service.Submit(s.ctx, "list-a", validSubmitInput())
	s.Require().NoError(err)
	regB, err := s.service.Submit(s.ctx, "list-b", validSubmitInput())
	s.Require().NoError(err)
	_, err = s.service.Decide(s.ctx, regB.ID, StatusApproved, "admin-1", "", "")
	s.Require().NoError(err)

	s.Run("empty status lists everything", func() {
		all, err := s.service.List(s.ctx, "")
		s.Require().NoError(err)
		s.Len(all, 2)
	})

	s.Run("status filter narrows the result", func() {
		pending, err := s.service.List(s.ctx, StatusPending)
		s.Require().NoError(err)
		s.Len(pending, 1)
	})
}
