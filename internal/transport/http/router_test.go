package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"zoowatch/internal/access"
	"zoowatch/internal/artifact"
	"zoowatch/internal/audit"
	"zoowatch/internal/extraction"
	extractionmocks "zoowatch/internal/extraction/mocks"
	identityhandler "zoowatch/internal/identity/handler"
	identityservice "zoowatch/internal/identity/service"
	identitystore "zoowatch/internal/identity/store"
	"zoowatch/internal/platform/metrics"
	"zoowatch/internal/platform/middleware"
	"zoowatch/internal/session"
	sessionstore "zoowatch/internal/session/store"
	submissionhandler "zoowatch/internal/submission/handler"
	"zoowatch/internal/submission/models"
	submissionservice "zoowatch/internal/submission/service"
	submissionstore "zoowatch/internal/submission/store"
	"zoowatch/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	extractor *extractionmocks.MockExtractor
	router    nethttp.Handler
}

func (s *RouterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.extractor = extractionmocks.NewMockExtractor(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := identitystore.NewInMemoryStore()
	s.Require().NoError(identitystore.SeedDefaultUsers(context.Background(), users))

	tokens := session.NewTokenManager("test-secret", time.Hour)
	auditor := audit.NewPublisher(64, logger)
	authService := identityservice.New(users, sessionstore.NewInMemoryStore(), tokens, auditor, logger)

	artifacts, err := artifact.NewLocalStore(s.T().TempDir())
	s.Require().NoError(err)

	m := metrics.NewWith(prometheus.NewRegistry())
	submissionService := submissionservice.New(
		submissionstore.NewInMemoryStore(users),
		s.extractor,
		artifacts,
		access.NewGate(),
		m,
		auditor,
		logger,
		"hi",
	)

	s.router = NewRouter(logger, m,
		identityhandler.New(authService, authService, logger, time.Hour),
		submissionhandler.New(submissionService, authService, logger),
	)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

// login authenticates as the given seeded user and returns the session cookie.
func (s *RouterSuite) login(login, password string) *nethttp.Cookie {
	req := testutil.NewJSONRequest(s.T(), nethttp.MethodPost, "/api/auth/login", map[string]string{
		"userId":   login,
		"password": password,
	})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(nethttp.StatusOK, rr.Code)

	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			s.NotEmpty(c.Value)
			s.True(c.HttpOnly)
			return c
		}
	}
	s.Require().FailNow("login response carried no session cookie")
	return nil
}

func (s *RouterSuite) submit(cookie *nethttp.Cookie, date string) map[string]any {
	s.T().Helper()
	s.extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), date, "hi").
		Return(&models.StructuredObservation{
			Date:                  date,
			AnimalObservedOnTime:  models.BoolPtr(true),
			DailyHealthMonitoring: models.StringPtr("all good"),
		}, nil)

	req := testutil.NewMultipartAudioRequest(s.T(), "/api/submissions", []byte("wav-bytes"), date)
	req.AddCookie(cookie)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(nethttp.StatusOK, rr.Code)
	return *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
}

func (s *RouterSuite) TestHealthz() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), nethttp.MethodGet, "/healthz"))
	s.Equal(nethttp.StatusOK, rr.Code)
}

func (s *RouterSuite) TestLoginLogoutCycle() {
	cookie := s.login("keeper", "keeper123")

	req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/auth/user")
	req.AddCookie(cookie)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(nethttp.StatusOK, rr.Code)
	user := *testutil.UnmarshalResponse[map[string]string](s.T(), rr)
	s.Equal("keeper", user["userId"])
	s.Equal("keeper", user["role"])
	s.Equal("Akhil Sharma", user["name"])

	logout := testutil.NewRequest(s.T(), nethttp.MethodPost, "/api/auth/logout")
	logout.AddCookie(cookie)
	rr = testutil.DoRequest(s.router, logout)
	s.Require().Equal(nethttp.StatusOK, rr.Code)

	req = testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/auth/user")
	req.AddCookie(cookie)
	rr = testutil.DoRequest(s.router, req)
	s.Equal(nethttp.StatusUnauthorized, rr.Code)
}

func (s *RouterSuite) TestLoginRejectsBadCredentials() {
	req := testutil.NewJSONRequest(s.T(), nethttp.MethodPost, "/api/auth/login", map[string]string{
		"userId":   "keeper",
		"password": "wrong",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, nethttp.StatusUnauthorized, "unauthorized")
}

func (s *RouterSuite) TestRoutesRequireSession() {
	for _, path := range []string{"/api/submissions", "/api/submissions/mine", "/api/auth/user"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), nethttp.MethodGet, path))
		s.Equal(nethttp.StatusUnauthorized, rr.Code, path)
	}
}

func (s *RouterSuite) TestSubmitAndReview() {
	keeper := s.login("keeper", "keeper123")
	created := s.submit(keeper, "2024-05-01")
	s.Equal("Audio processed successfully", created["message"])
	id := created["submissionId"].(string)
	s.NotEmpty(id)

	s.Run("keeper lists own submission", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions/mine")
		req.AddCookie(keeper)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(nethttp.StatusOK, rr.Code)
		resp := *testutil.UnmarshalResponse[map[string][]models.Submission](s.T(), rr)
		s.Len(resp["submissions"], 1)
	})

	s.Run("keeper may not list everything", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions")
		req.AddCookie(keeper)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, nethttp.StatusForbidden, "forbidden")
	})

	doctor := s.login("doctor", "doctor123")

	s.Run("doctor lists everything and comments", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions")
		req.AddCookie(doctor)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(nethttp.StatusOK, rr.Code)

		comment := testutil.NewJSONRequest(s.T(), nethttp.MethodPost, "/api/submissions/"+id+"/comments", map[string]string{
			"content": "please recheck the feed chart",
		})
		comment.AddCookie(doctor)
		rr = testutil.DoRequest(s.router, comment)
		s.Require().Equal(nethttp.StatusCreated, rr.Code)
	})

	s.Run("detail carries author and comments", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions/"+id)
		req.AddCookie(keeper)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(nethttp.StatusOK, rr.Code)
		detail := testutil.UnmarshalResponse[models.SubmissionDetail](s.T(), rr)
		s.Equal("Akhil Sharma", detail.AuthorName)
		s.Len(detail.Comments, 1)
	})

	s.Run("report downloads as plain text", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions/"+id+"/report")
		req.AddCookie(doctor)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(nethttp.StatusOK, rr.Code)
		s.Contains(rr.Header().Get("Content-Type"), "text/plain")
		s.Contains(rr.Header().Get("Content-Disposition"), "attachment")
		s.Contains(rr.Body.String(), "ZOO ANIMAL MONITORING REPORT")
		s.Contains(rr.Body.String(), "Date: 2024-05-01")
	})
}

func (s *RouterSuite) TestSubmitMasksExtractionFailure() {
	keeper := s.login("keeper", "keeper123")

	s.extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), "2024-05-02", "hi").
		Return(nil, extraction.NewError(extraction.CategoryTimeout, "deadline exceeded", errors.New("context deadline exceeded")))

	req := testutil.NewMultipartAudioRequest(s.T(), "/api/submissions", []byte("noise"), "2024-05-02")
	req.AddCookie(keeper)
	rr := testutil.DoRequest(s.router, req)

	s.Require().Equal(nethttp.StatusOK, rr.Code, "extraction failures must not surface as HTTP errors")
	resp := *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	structured := resp["structuredData"].(map[string]any)
	s.Equal(submissionservice.FallbackRequirementsMarker, structured["other_animal_requirements"])
}

func (s *RouterSuite) TestSubmitRejectsReviewers() {
	doctor := s.login("doctor", "doctor123")

	req := testutil.NewMultipartAudioRequest(s.T(), "/api/submissions", []byte("wav"), "2024-05-01")
	req.AddCookie(doctor)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, nethttp.StatusForbidden, "forbidden")
}

func (s *RouterSuite) TestSubmitValidation() {
	keeper := s.login("keeper", "keeper123")

	s.Run("missing date", func() {
		req := testutil.NewMultipartAudioRequest(s.T(), "/api/submissions", []byte("wav"), "")
		req.AddCookie(keeper)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, nethttp.StatusBadRequest, "bad_request")
	})

	s.Run("bad submission id", func() {
		req := testutil.NewRequest(s.T(), nethttp.MethodGet, "/api/submissions/not-a-uuid")
		req.AddCookie(keeper)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, nethttp.StatusBadRequest, "bad_request")
	})
}

func (s *RouterSuite) TestUpdateThroughAPI() {
	keeper := s.login("keeper", "keeper123")
	created := s.submit(keeper, "2024-05-01")
	id := created["submissionId"].(string)

	update := testutil.NewJSONRequest(s.T(), nethttp.MethodPut, "/api/submissions/"+id, map[string]any{
		"structuredData": map[string]any{
			"date_or_day":                    "2030-01-01",
			"daily_animal_health_monitoring": "revised after review",
		},
	})
	update.AddCookie(keeper)
	rr := testutil.DoRequest(s.router, update)
	s.Require().Equal(nethttp.StatusOK, rr.Code)

	detail := testutil.UnmarshalResponse[models.SubmissionDetail](s.T(), rr)
	s.Equal("2024-05-01", detail.Structured.Date, "edits cannot move the observation date")
	s.Equal("revised after review", *detail.Structured.DailyHealthMonitoring)
}
