package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

const baseURL = "http://stub.test"

// appTransport routes client requests into the fiber app without a socket.
type appTransport struct {
	app *fiber.App
}

func (t appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Name: "stub-test", Version: "test"},
		Stub: config.StubConfig{
			JWTSecret:       "test-secret",
			TokenTTLMinutes: 60,
			OTPTTLMinutes:   10,
			BcryptCost:      4,
			OTPStore:        config.OTPStoreMemory,
		},
	}
}

func newTestServer(t *testing.T, c clock.Clock) *Server {
	t.Helper()
	s, err := New(context.Background(), Options{Config: testConfig(), Clock: c})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func clientOpts(s *Server) []client.Option {
	return []client.Option{client.WithHTTPClient(&http.Client{Transport: appTransport{app: s.App}})}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func login(t *testing.T, s *Server, username, password string) domain.Session {
	t.Helper()
	resp := postJSON(t, s.App, "/user/login", dto.UserLoginRequest{Username: username, Password: password})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login status = %d: %s", resp.StatusCode, body)
	}
	var auth dto.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return domain.Session{Token: auth.Token, UserID: auth.UserID, UserType: auth.UserType, UserName: auth.UserName}
}

// captureOtps records every OTP the service issues.
func captureOtps(s *Server) <-chan string {
	ch := make(chan string, 8)
	s.Dispatcher.Subscribe(events.EventOtpIssued, func(_ context.Context, e events.Event) error {
		ch <- e.Payload.(events.OtpIssued).OTP
		return nil
	})
	return ch
}

func TestLoginReturnsSessionFields(t *testing.T) {
	s := newTestServer(t, nil)
	sess := login(t, s, "jdoe", DemoPassword)

	if !sess.Valid() || sess.UserID != "2021-0001" || sess.Kind() != domain.UserKindStudent {
		t.Fatalf("session = %+v", sess)
	}
	if sess.UserName != "Juan Dela Cruz" {
		t.Errorf("user name = %q", sess.UserName)
	}

	resp := postJSON(t, s.App, "/user/login", dto.UserLoginRequest{Username: "jdoe", Password: "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", resp.StatusCode)
	}
}

func TestTicketClientAgainstService(t *testing.T) {
	s := newTestServer(t, nil)
	sess := login(t, s, "jdoe", DemoPassword)
	tc := client.NewTicketClient(baseURL, clientOpts(s)...)
	ctx := context.Background()

	list, err := tc.ListTickets(ctx, sess)
	if err != nil {
		t.Fatalf("initial list: %v", err)
	}
	if list.Outcome != client.ListNoContent {
		t.Fatalf("outcome = %v, want NO_CONTENT", list.Outcome)
	}

	draft := domain.NewTicketDraft(time.Date(2024, 10, 1, 9, 0, 0, 0, time.Local), sess.Kind())
	draft.IssueText = "No network in CL3"
	created, err := tc.CreateTicket(ctx, sess, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.StatusCode != http.StatusCreated || created.Record == nil {
		t.Fatalf("created = %+v", created)
	}
	if created.Record.Issue != "No network in CL3" || created.Record.CreatedLabel() != "2024-10-01" {
		t.Errorf("echoed record = %+v", created.Record)
	}

	list, err = tc.ListTickets(ctx, sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Outcome != client.ListTickets || len(list.Records) != 1 {
		t.Fatalf("list = %+v", list)
	}
	rec := list.Records[0]
	if rec.StatusLabel() != domain.TicketStatusToDo || rec.AssigneeLabel() != "Unassigned" || rec.FinishedLabel() != "N/A" {
		t.Errorf("record = %+v", rec)
	}
}

func TestTicketEndpointsRequireOwnToken(t *testing.T) {
	s := newTestServer(t, nil)
	sess := login(t, s, "jdoe", DemoPassword)
	tc := client.NewTicketClient(baseURL, clientOpts(s)...)
	ctx := context.Background()

	other := sess
	other.UserID = "E-1001"
	_, err := tc.ListTickets(ctx, other)
	if !apperrors.Is(err, apperrors.CodeNetwork) || apperrors.ToDomainError(err).HTTPStatus != http.StatusForbidden {
		t.Errorf("listing another user's tickets: %v", err)
	}

	forged := sess
	forged.Token = "not-a-jwt"
	draft := domain.NewTicketDraft(time.Now(), sess.Kind())
	draft.IssueText = "Projector"
	_, err = tc.CreateTicket(ctx, forged, draft)
	if !apperrors.Is(err, apperrors.CodeRejected) || apperrors.ToDomainError(err).HTTPStatus != http.StatusUnauthorized {
		t.Errorf("create with forged token: %v", err)
	}
}

func TestRecoveryFlowAgainstService(t *testing.T) {
	s := newTestServer(t, nil)
	otps := captureOtps(s)
	rc := client.NewRecoveryClient(baseURL, clientOpts(s)...)
	flow := client.NewRecoveryFlow(rc)
	ctx := context.Background()

	if err := flow.RequestOtp(ctx, domain.RecoveryRequest{Username: "jdoe", Email: "jdoe@example.com"}); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	var otp string
	select {
	case otp = <-otps:
	case <-time.After(5 * time.Second):
		t.Fatal("no otp issued")
	}
	if len(otp) != 6 {
		t.Fatalf("otp = %q", otp)
	}

	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}
	err := flow.ConfirmOtp(ctx, wrong, "NewPass1!")
	if !apperrors.Is(err, apperrors.CodeRejected) || apperrors.ToDomainError(err).HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("wrong otp: %v", err)
	}
	if flow.State() != domain.RecoveryFailed || !flow.CanConfirm() {
		t.Fatalf("state after wrong otp = %s", flow.State())
	}

	if err := flow.ConfirmOtp(ctx, otp, "NewPass1!"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if flow.State() != domain.RecoveryPasswordReset {
		t.Fatalf("state = %s", flow.State())
	}

	login(t, s, "jdoe", "NewPass1!")
	resp := postJSON(t, s.App, "/user/login", dto.UserLoginRequest{Username: "jdoe", Password: DemoPassword})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password still accepted: %d", resp.StatusCode)
	}

	err = rc.ConfirmOtp(ctx, domain.RecoveryConfirmation{Username: "jdoe", OTP: otp, NewPassword: "Again1!"})
	if apperrors.ToDomainError(err).HTTPStatus != http.StatusUnauthorized {
		t.Errorf("reused otp: %v", err)
	}
}

func TestForgotPasswordUnknownAccount(t *testing.T) {
	s := newTestServer(t, nil)
	rc := client.NewRecoveryClient(baseURL, clientOpts(s)...)

	err := rc.RequestOtp(context.Background(), domain.RecoveryRequest{Username: "jdoe", Email: "someone@example.com"})
	if !apperrors.Is(err, apperrors.CodeRejected) || apperrors.ToDomainError(err).HTTPStatus != http.StatusNotFound {
		t.Fatalf("mismatched email: %v", err)
	}
}

func TestOtpExpires(t *testing.T) {
	fc := clock.Fake(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))
	s := newTestServer(t, fc)
	otps := captureOtps(s)
	rc := client.NewRecoveryClient(baseURL, clientOpts(s)...)
	ctx := context.Background()

	if err := rc.RequestOtp(ctx, domain.RecoveryRequest{Username: "mreyes", Email: "MReyes@example.com"}); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	otp := <-otps
	fc.Advance(11 * time.Minute)

	err := rc.ConfirmOtp(ctx, domain.RecoveryConfirmation{Username: "mreyes", OTP: otp, NewPassword: "Later1!"})
	if apperrors.ToDomainError(err).HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expired otp: %v", err)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d", resp.StatusCode)
	}

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body dto.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || body.Error.Code != apperrors.CodeNotFound {
		t.Errorf("unknown route = %d %+v", resp.StatusCode, body)
	}
}

func postAuthed(t *testing.T, app *fiber.App, token, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func TestAuthClientAgainstService(t *testing.T) {
	s := newTestServer(t, nil)
	ac := client.NewAuthClient(baseURL, clientOpts(s)...)

	sess, err := ac.Login(context.Background(), "mreyes", DemoPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Kind() != domain.UserKindEmployee || sess.UserID != "E-1001" {
		t.Errorf("session = %+v", sess)
	}
	if _, err := ac.Login(context.Background(), "mreyes", "nope"); !apperrors.Is(err, apperrors.CodeRejected) {
		t.Errorf("bad password: %v", err)
	}
}

func TestStaffAssignAndResolve(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 10, 3, 15, 0, 0, 0, time.Local))
	s := newTestServer(t, fc)
	student := login(t, s, "jdoe", DemoPassword)
	staff := login(t, s, "acruz", DemoPassword)
	tc := client.NewTicketClient(baseURL, clientOpts(s)...)
	ctx := context.Background()

	draft := domain.NewTicketDraft(time.Date(2024, 10, 1, 9, 0, 0, 0, time.Local), student.Kind())
	draft.IssueText = "Projector in AVR-2 flickers"
	created, err := tc.CreateTicket(ctx, student, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := string(created.Record.TicketID)

	resp := postAuthed(t, s.App, student.Token, "/TicketService/ticket/"+id+"/assign")
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("student assign status = %d, want 403", resp.StatusCode)
	}
	resp = postAuthed(t, s.App, staff.Token, "/TicketService/ticket/999/assign")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown ticket status = %d, want 404", resp.StatusCode)
	}

	resp = postAuthed(t, s.App, staff.Token, "/TicketService/ticket/"+id+"/assign")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign status = %d", resp.StatusCode)
	}
	list, err := tc.ListTickets(ctx, student)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	rec := list.Records[0]
	if rec.AssigneeLabel() != "Ana Cruz" || rec.StatusLabel() != "In Progress" || rec.FinishedLabel() != "N/A" {
		t.Errorf("after assign: %s / %s / %s", rec.AssigneeLabel(), rec.StatusLabel(), rec.FinishedLabel())
	}

	resp = postAuthed(t, s.App, staff.Token, "/TicketService/ticket/"+id+"/resolve")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d", resp.StatusCode)
	}
	list, err = tc.ListTickets(ctx, student)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	rec = list.Records[0]
	if rec.StatusLabel() != "Done" || rec.FinishedLabel() != "2024-10-03" {
		t.Errorf("after resolve: %s / %s", rec.StatusLabel(), rec.FinishedLabel())
	}
}
