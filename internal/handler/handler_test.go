package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediconnect/internal/api"
	"mediconnect/internal/auth"
	"mediconnect/internal/events"
	"mediconnect/internal/handler"
	"mediconnect/internal/middleware"
	"mediconnect/internal/notify"
	"mediconnect/internal/service"
	"mediconnect/internal/store/storetest"
)

const secret = "handler-test-secret-0123456789abcdef"

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail notify.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type env struct {
	t      *testing.T
	router http.Handler
	mem    *storetest.Memory
	mail   *recordingMailer
}

func setup(t *testing.T, opts ...func(*handler.Options)) *env {
	t.Helper()
	log := zap.NewNop()
	mem := storetest.New()
	tokens, err := auth.NewTokenService(secret)
	require.NoError(t, err)

	mail := &recordingMailer{}
	notifier := notify.New(mail, mem, mem, log, notify.Sync())
	emitter := events.NewEmitter(events.Nop{}, log)

	h := handler.New(service.Services{
		Auth:         service.NewAuthService(mem, tokens, log),
		Profiles:     service.NewProfileService(mem),
		Doctors:      service.NewDoctorService(mem, log, emitter, notifier),
		Appointments: service.NewAppointmentService(mem, mem, mem, emitter, log),
		Analytics:    service.NewAnalyticsService(mem),
	}, log)

	o := handler.Options{Tokens: tokens, CORSOrigins: []string{"*"}, Ready: pinger{}}
	for _, fn := range opts {
		fn(&o)
	}
	return &env{t: t, router: h.Router(o), mem: mem, mail: mail}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	return decode[api.ErrorResponse](t, rr).Error
}

func (e *env) register(email, role string) api.AuthResponse {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": "User " + email, "role": role,
	})
	require.Equal(e.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[api.AuthResponse](e.t, rr)
}

// ----- auth -----

func TestRegisterAndLogin(t *testing.T) {
	e := setup(t)

	doc := e.register("doc@example.com", "DOCTOR")
	assert.NotEmpty(t, doc.Token)
	require.NotNil(t, doc.User.Doctor)
	assert.Equal(t, service.DefaultSpeciality, doc.User.Doctor.Speciality)
	assert.False(t, doc.User.Doctor.IsOnline)

	rr := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "DOC@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, doc.User.ID, decode[api.AuthResponse](t, rr).User.ID)

	rr = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "doc@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, rr))
}

func TestRegisterValidation(t *testing.T) {
	e := setup(t)
	e.register("taken@example.com", "PATIENT")

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing email", map[string]string{"password": "password1", "name": "X", "role": "PATIENT"}, "email is required"},
		{"short password", map[string]string{"email": "a@b.co", "password": "123", "name": "X", "role": "PATIENT"}, "password must be at least 6 characters"},
		{"admin role", map[string]string{"email": "a@b.co", "password": "password1", "name": "X", "role": "ADMIN"}, "Role must be DOCTOR or PATIENT"},
		{"duplicate", map[string]string{"email": "taken@example.com", "password": "password1", "name": "X", "role": "PATIENT"}, "User already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, errorOf(t, rr), tt.want)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := setup(t)
	for _, path := range []string{"/api/users/profile", "/api/doctors", "/api/appointments", "/api/analytics"} {
		rr := e.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rr.Body.String())

		rr = e.do(http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestPublicRoutes(t *testing.T) {
	e := setup(t)
	for _, path := range []string{"/", "/health/live", "/health/ready", "/metrics"} {
		assert.Equal(t, http.StatusOK, e.do(http.MethodGet, path, "", nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/nope", "", nil).Code)
}

func TestReadyReportsDatabaseDown(t *testing.T) {
	e := setup(t, func(o *handler.Options) { o.Ready = pinger{err: errors.New("down")} })
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func TestGRPCWebMount(t *testing.T) {
	var hit string
	e := setup(t, func(o *handler.Options) {
		o.GRPCWebPrefix = "/mediconnect.v1.MediConnect"
		o.GRPCWeb = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = r.URL.Path
			w.WriteHeader(http.StatusOK)
		})
	})
	rr := e.do(http.MethodPost, "/mediconnect.v1.MediConnect/Login", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/mediconnect.v1.MediConnect/Login", hit)
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "Grpc-Status")
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	t.Cleanup(rl.Stop)
	e := setup(t, func(o *handler.Options) { o.Limiter = rl })

	body := map[string]string{"email": "x@example.com", "password": "password1"}
	codes := []int{}
	for range 3 {
		codes = append(codes, e.do(http.MethodPost, "/api/auth/login", "", body).Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestAuthRateLimitIgnoresForwardedHeadersFromClients(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	t.Cleanup(rl.Stop)
	e := setup(t, func(o *handler.Options) { o.Limiter = rl })

	codes := []int{}
	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@example.com","password":"password1"}`))
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i+100))
		rr := httptest.NewRecorder()
		e.router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestAuthRateLimitUsesClientBehindTrustedProxy(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	t.Cleanup(rl.Stop)
	e := setup(t, func(o *handler.Options) {
		o.Limiter = rl
		o.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	})

	login := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@example.com","password":"password1"}`))
		req.RemoteAddr = "10.1.2.3:5555"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", client+", 10.9.9.9")
		rr := httptest.NewRecorder()
		e.router.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.2"))
}

// ----- profile -----

func TestProfile(t *testing.T) {
	e := setup(t)
	pat := e.register("pat@example.com", "PATIENT")

	rr := e.do(http.MethodGet, "/api/users/profile", pat.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pat@example.com", decode[api.User](t, rr).Email)

	rr = e.do(http.MethodPut, "/api/users/profile", pat.Token, map[string]string{"name": "Patricia", "phone": "555-0100", "speciality": "ignored"})
	require.Equal(t, http.StatusOK, rr.Code)
	u := decode[api.User](t, rr)
	assert.Equal(t, "Patricia", u.Name)
	require.NotNil(t, u.Patient)
	require.NotNil(t, u.Patient.Phone)
	assert.Equal(t, "555-0100", *u.Patient.Phone)
	assert.Nil(t, u.Doctor)
}

// ----- availability -----

func TestAvailability_NotifiesPatientsOnceOnEdge(t *testing.T) {
	e := setup(t)
	doc := e.register("doc@example.com", "DOCTOR")
	e.register("p1@example.com", "PATIENT")
	e.register("p2@example.com", "PATIENT")

	rr := e.do(http.MethodPut, "/api/doctors/status", doc.Token, map[string]bool{"isOnline": true})
	require.Equal(t, http.StatusOK, rr.Code)
	d := decode[api.Doctor](t, rr)
	assert.True(t, d.IsOnline)
	require.NotNil(t, d.LastOnlineAt)

	rr = e.do(http.MethodPut, "/api/doctors/status", doc.Token, map[string]bool{"isOnline": true})
	require.Equal(t, http.StatusOK, rr.Code)

	require.Equal(t, 1, e.mail.count(), "online to online must not mail again")
	assert.ElementsMatch(t, []string{"p1@example.com", "p2@example.com"}, e.mail.sent[0].To)
	assert.Equal(t, 1, e.mem.NotificationCount())

	rr = e.do(http.MethodPut, "/api/doctors/status", doc.Token, map[string]bool{"isOnline": false})
	require.Equal(t, http.StatusOK, rr.Code)
	off := decode[api.Doctor](t, rr)
	assert.False(t, off.IsOnline)
	assert.Equal(t, d.LastOnlineAt.Unix(), off.LastOnlineAt.Unix(), "going offline keeps lastOnlineAt")
	assert.Equal(t, 1, e.mail.count())
}

func TestAvailability_OnlyDoctors(t *testing.T) {
	e := setup(t)
	pat := e.register("pat@example.com", "PATIENT")

	rr := e.do(http.MethodPut, "/api/doctors/status", pat.Token, map[string]bool{"isOnline": true})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	doc := e.register("doc@example.com", "DOCTOR")
	rr = e.do(http.MethodPut, "/api/doctors/status", doc.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "isOnline is required", errorOf(t, rr))
}

func TestListDoctors(t *testing.T) {
	e := setup(t)
	a := e.register("a@example.com", "DOCTOR")
	e.register("b@example.com", "DOCTOR")
	pat := e.register("pat@example.com", "PATIENT")
	e.do(http.MethodPut, "/api/doctors/status", a.Token, map[string]bool{"isOnline": true})

	rr := e.do(http.MethodGet, "/api/doctors?isOnline=true", pat.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[api.DoctorList](t, rr)
	require.Len(t, list.Doctors, 1)
	assert.Equal(t, a.User.Doctor.ID, list.Doctors[0].ID)
	assert.Equal(t, api.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1}, list.Pagination)

	rr = e.do(http.MethodGet, "/api/doctors?limit=1&page=2", pat.Token, nil)
	list = decode[api.DoctorList](t, rr)
	assert.Len(t, list.Doctors, 1)
	assert.Equal(t, 2, list.Pagination.Total)

	rr = e.do(http.MethodGet, "/api/doctors/online", pat.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[api.OnlineDoctors](t, rr).Doctors, 1)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/doctors?isOnline=maybe", pat.Token, nil).Code)
}

// ----- appointments -----

type booking struct {
	*env
	doc, pat, other api.AuthResponse
}

func newBooking(t *testing.T) *booking {
	e := setup(t)
	b := &booking{
		env:   e,
		doc:   e.register("doc@example.com", "DOCTOR"),
		pat:   e.register("pat@example.com", "PATIENT"),
		other: e.register("other@example.com", "PATIENT"),
	}
	return b
}

func (b *booking) goOnline() {
	rr := b.do(http.MethodPut, "/api/doctors/status", b.doc.Token, map[string]bool{"isOnline": true})
	require.Equal(b.t, http.StatusOK, rr.Code)
}

func (b *booking) book(token string) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, "/api/appointments", token, map[string]any{
		"doctorId":        b.doc.User.Doctor.ID,
		"appointmentDate": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"notes":           "follow-up",
	})
}

func (b *booking) setStatus(token, id, status string) *httptest.ResponseRecorder {
	return b.do(http.MethodPut, "/api/appointments/"+id, token, map[string]string{"status": status})
}

func TestBooking_DoctorMustBeOnline(t *testing.T) {
	b := newBooking(t)

	rr := b.book(b.pat.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Doctor is currently offline", errorOf(t, rr))

	b.goOnline()
	rr = b.book(b.pat.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	a := decode[api.Appointment](t, rr)
	assert.Equal(t, "PENDING", string(a.Status))
	assert.Equal(t, b.pat.User.Patient.ID, a.PatientID)
	assert.Equal(t, b.doc.User.Doctor.ID, a.Doctor.ID)
}

func TestBooking_OnlyPatientsCreate(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	assert.Equal(t, http.StatusForbidden, b.book(b.doc.Token).Code)
}

func TestBooking_MissingFields(t *testing.T) {
	b := newBooking(t)
	rr := b.do(http.MethodPost, "/api/appointments", b.pat.Token, map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Doctor ID and appointment date are required", errorOf(t, rr))

	rr = b.do(http.MethodPost, "/api/appointments", b.pat.Token, map[string]string{"doctorId": "missing", "appointmentDate": time.Now().Format(time.RFC3339)})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Doctor not found", errorOf(t, rr))
}

func TestBooking_AcceptsDatetimeLocal(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	local := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Minute)

	rr := b.do(http.MethodPost, "/api/appointments", b.pat.Token, map[string]string{
		"doctorId":        b.doc.User.Doctor.ID,
		"appointmentDate": local.Format("2006-01-02T15:04"),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.True(t, local.Equal(decode[api.Appointment](t, rr).AppointmentDate))

	rr = b.do(http.MethodPost, "/api/appointments", b.pat.Token, map[string]string{
		"doctorId":        b.doc.User.Doctor.ID,
		"appointmentDate": "tomorrow-ish",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid appointment date", errorOf(t, rr))
}

func TestAppointmentRoutes_MalformedIDs(t *testing.T) {
	b := newBooking(t)
	b.goOnline()

	rr := b.do(http.MethodGet, "/api/appointments/abc", b.pat.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Appointment not found", errorOf(t, rr))
	assert.Equal(t, http.StatusNotFound, b.setStatus(b.doc.Token, "abc", "CONFIRMED").Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodDelete, "/api/appointments/abc", b.pat.Token, nil).Code)

	rr = b.do(http.MethodPost, "/api/appointments", b.pat.Token, map[string]string{
		"doctorId": "abc", "appointmentDate": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Doctor not found", errorOf(t, rr))
}

func TestAppointmentLifecycle(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	id := decode[api.Appointment](t, b.book(b.pat.Token)).ID

	rr := b.setStatus(b.doc.Token, id, "CONFIRMED")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CONFIRMED", string(decode[api.Appointment](t, rr).Status))

	rr = b.setStatus(b.pat.Token, id, "COMPLETED")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Patients can only cancel appointments", errorOf(t, rr))

	rr = b.setStatus(b.doc.Token, id, "PENDING")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Cannot change status from CONFIRMED to PENDING", errorOf(t, rr))

	rr = b.setStatus(b.pat.Token, id, "CANCELLED")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = b.setStatus(b.doc.Token, id, "CONFIRMED")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Appointment is already CANCELLED", errorOf(t, rr))

	rr = b.setStatus(b.doc.Token, id, "ARCHIVED")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAppointmentNotesIndependentOfStatus(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	id := decode[api.Appointment](t, b.book(b.pat.Token)).ID

	rr := b.do(http.MethodPut, "/api/appointments/"+id, b.doc.Token, map[string]string{"notes": "bring x-rays"})
	require.Equal(t, http.StatusOK, rr.Code)
	a := decode[api.Appointment](t, rr)
	assert.Equal(t, "PENDING", string(a.Status))
	require.NotNil(t, a.Notes)
	assert.Equal(t, "bring x-rays", *a.Notes)

	rr = b.do(http.MethodPut, "/api/appointments/"+id, b.doc.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = b.do(http.MethodPut, "/api/appointments/"+id, b.doc.Token, map[string]any{"notes": nil})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[api.Appointment](t, rr).Notes)

	rr = b.do(http.MethodGet, "/api/appointments/"+id, b.pat.Token, nil)
	assert.Nil(t, decode[api.Appointment](t, rr).Notes)
}

// Another patient must not read or touch someone else's appointment.
func TestAppointmentIDOR(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	id := decode[api.Appointment](t, b.book(b.pat.Token)).ID

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, "/api/appointments/"+id, b.other.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, b.setStatus(b.other.Token, id, "CANCELLED").Code)
	assert.Equal(t, http.StatusForbidden, b.do(http.MethodDelete, "/api/appointments/"+id, b.other.Token, nil).Code)

	rr := b.do(http.MethodGet, "/api/appointments", b.other.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[api.AppointmentList](t, rr).Appointments)

	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/appointments/"+id, b.pat.Token, nil).Code)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/appointments/"+id, b.doc.Token, nil).Code)
}

func TestAppointmentDelete(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	id := decode[api.Appointment](t, b.book(b.pat.Token)).ID

	rr := b.do(http.MethodDelete, "/api/appointments/"+id, b.doc.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/api/appointments/"+id, b.pat.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodDelete, "/api/appointments/"+id, b.pat.Token, nil).Code)
}

func TestListAppointments(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	first := decode[api.Appointment](t, b.book(b.pat.Token)).ID
	b.book(b.pat.Token)
	b.book(b.other.Token)
	b.setStatus(b.doc.Token, first, "CONFIRMED")

	rr := b.do(http.MethodGet, "/api/appointments", b.doc.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decode[api.AppointmentList](t, rr).Pagination.Total)

	rr = b.do(http.MethodGet, "/api/appointments?status=CONFIRMED", b.pat.Token, nil)
	list := decode[api.AppointmentList](t, rr)
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, first, list.Appointments[0].ID)

	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodGet, "/api/appointments?status=nope", b.pat.Token, nil).Code)
}

// ----- analytics -----

func TestAnalytics(t *testing.T) {
	b := newBooking(t)
	b.goOnline()
	b.book(b.pat.Token)

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, "/api/analytics", b.pat.Token, nil).Code)

	rr := b.do(http.MethodGet, "/api/analytics?period=30d", b.doc.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	a := decode[api.Analytics](t, rr)
	assert.Equal(t, "30d", a.Period)
	assert.Equal(t, 1, a.Overview.TotalDoctors)
	assert.Equal(t, 2, a.Overview.TotalPatients)
	assert.Equal(t, 1, a.Overview.OnlineDoctors)
	assert.Equal(t, 1, a.Overview.PendingAppointments)
	assert.Equal(t, 1, a.Overview.RecentNotifications)
	require.Len(t, a.Distribution.Specialities, 1)
	assert.Equal(t, service.DefaultSpeciality, a.Distribution.Specialities[0].Speciality)
}
