package handler

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"hearth/internal/agent"
	"hearth/internal/platform/jwtauth"
	"hearth/internal/platform/middleware"
	"hearth/pkg/testutil"
)

type RegistrationHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *agent.Service
	tokens  *jwtauth.Service
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	logger := slog.Default()
	s.tokens = jwtauth.NewService("test-signing-key", "hearth-test")
	s.service = agent.NewService(agent.NewInMemoryStore(), nil, nil, logger, 20)

	s.router = chi.NewRouter()
	New(s.service, logger, s.tokens).Register(s.router)
}

func (s *RegistrationHandlerSuite) token(userID, role string) string {
	token, err := s.tokens.GenerateToken(userID, role, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *RegistrationHandlerSuite) authed(req *http.Request, userID, role string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+s.token(userID, role))
	return req
}

func validSubmitBody() map[string]any {
	return map[string]any{
		"first_name":        "Nadia",
		"last_name":         "Haddad",
		"date_of_birth":     "15/06/1990",
		"national_id":       "12345678",
		"phone":             "98765432",
		"address":           "12 Harbour Road",
		"city":              "Tunis",
		"postal_code":       "1002",
		"bank_name":         "Coastal Bank",
		"position":          "Loan Officer",
		"employee_id":       "445566",
		"department":        "Mortgage Lending",
		"supervisor_phone":  "71234567",
		"national_id_doc":   "docs/national-id.pdf",
		"employment_letter": "docs/employment-letter.pdf",
	}
}

func (s *RegistrationHandlerSuite) TestSubmit() {
	s.Run("creates a pending registration", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody()), "buyer-1", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "status", "pending")
	})

	s.Run("returns the full field report on validation failure", func() {
		body := validSubmitBody()
		body["national_id"] = "12"
		body["phone"] = "xyz"

		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", body), "buyer-2", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_failed")
		resp := testutil.UnmarshalErrorResponse(s.T(), rr)
		fields, ok := resp["fields"].(map[string]any)
		s.Require().True(ok)
		s.Contains(fields, "national_id")
		s.Contains(fields, "phone")
	})

	s.Run("rejects a duplicate submission with a conflict", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody()), "buyer-3", middleware.RoleBuyer)
		testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusCreated)

		req = s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody()), "buyer-3", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("rejects a missing token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("rejects a malformed body", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/registrations")
		req = s.authed(req, "buyer-4", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *RegistrationHandlerSuite) TestDecide() {
	submit := func(userID string) string {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody()), userID, middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]string](s.T(), rr)
		return (*resp)["id"]
	}

	s.Run("admin approves a registration", func() {
		id := submit("decide-1")

		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/"+id+"/decision",
			map[string]string{"outcome": "approved", "notes": "verified"}), "admin-1", middleware.RoleAdmin)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "status", "approved")
		testutil.AssertJSONContains(s.T(), rr, "reviewed_by", "admin-1")
	})

	s.Run("rejection without a reason fails", func() {
		id := submit("decide-2")

		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/"+id+"/decision",
			map[string]string{"outcome": "rejected"}), "admin-1", middleware.RoleAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_failed")
	})

	s.Run("second decision surfaces the transition states", func() {
		id := submit("decide-3")

		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/"+id+"/decision",
			map[string]string{"outcome": "approved"}), "admin-1", middleware.RoleAdmin)
		testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusOK)

		req = s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/"+id+"/decision",
			map[string]string{"outcome": "rejected", "rejection_reason": "late finding"}), "admin-1", middleware.RoleAdmin)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_transition")
		resp := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("approved", resp["from_state"])
		s.Equal("rejected", resp["to_state"])
	})

	s.Run("non-admin cannot decide", func() {
		id := submit("decide-4")

		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations/"+id+"/decision",
			map[string]string{"outcome": "approved"}), "buyer-9", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})
}

func (s *RegistrationHandlerSuite) TestReads() {
	s.Run("me returns 404 before any submission", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/registrations/me"), "fresh-user", middleware.RoleBuyer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("admin lists by status", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", validSubmitBody()), "lister", middleware.RoleBuyer)
		testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusCreated)

		req = s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/registrations?status=pending"), "admin-1", middleware.RoleAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[map[string][]map[string]any](s.T(), rr)
		s.Len((*resp)["registrations"], 1)
	})
}
