package main

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/example/court-reservations/internal/config"
	"github.com/example/court-reservations/internal/persistence"
	"github.com/example/court-reservations/internal/testfixtures"
)

const (
	anaFrom   = "whatsapp:+56911111111"
	brunoFrom = "whatsapp:+56922222222"
)

type testApp struct {
	*app
	clock *testfixtures.Clock
	ana   persistence.Member
	bruno persistence.Member
}

func newTestApp(t *testing.T, backend string) *testApp {
	t.Helper()

	cfg := config.Config{
		HTTPPort:       8080,
		SQLitePath:     filepath.Join(t.TempDir(), "courtbot.db"),
		SessionBackend: backend,
		SessionTTL:     30 * time.Minute,
		Location:       time.UTC,
		LogLevel:       slog.LevelInfo,
	}
	if backend == config.SessionBackendRedis {
		cfg.RedisAddr = miniredis.RunT(t).Addr()
	}

	clock := testfixtures.NewClock(time.Time{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(context.Background(), cfg, clock.NowFunc(), logger)
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	ta := &testApp{
		app:   a,
		clock: clock,
		ana:   testfixtures.NewMember(testfixtures.WithMemberPhone("56911111111"), testfixtures.WithMemberName("Ana Pérez")),
		bruno: testfixtures.NewMember(testfixtures.WithMemberPhone("56922222222"), testfixtures.WithMemberName("Bruno Soto")),
	}
	ctx := context.Background()
	for _, member := range []persistence.Member{ta.ana, ta.bruno} {
		if err := a.storage.UpsertMember(ctx, member); err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}
	}
	if err := a.storage.CreateSlots(ctx, testfixtures.Timetable("2024-04-20", 8, 10, 1, 2)); err != nil {
		t.Fatalf("failed to seed slots: %v", err)
	}
	return ta
}

func (ta *testApp) send(t *testing.T, from, body string) string {
	t.Helper()

	form := url.Values{"From": {from}, "Body": {body}}
	req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		Message string `xml:"Message"`
	}
	if err := xml.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode TwiML: %v", err)
	}
	return doc.Message
}

func assertContains(t *testing.T, reply, want string) {
	t.Helper()
	if !strings.Contains(reply, want) {
		t.Fatalf("expected reply to contain %q, got %q", want, reply)
	}
}

func TestCourtbot_BookingDialogue(t *testing.T) {
	for _, backend := range []string{config.SessionBackendSQLite, config.SessionBackendRedis} {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			ta := newTestApp(t, backend)

			assertContains(t, ta.send(t, anaFrom, "20-04"), "08:00 a 09:00 (Canchas: 1, 2)")
			assertContains(t, ta.send(t, anaFrom, "08:00"), "a las 08:00: 1, 2")
			assertContains(t, ta.send(t, anaFrom, "1"), "Reserva confirmada, Ana: cancha 1")

			slot, err := ta.storage.GetSlot(context.Background(), persistence.SlotKey{Date: "2024-04-20", StartTime: "08:00", ResourceID: 1})
			if err != nil {
				t.Fatalf("GetSlot returned error: %v", err)
			}
			if !slot.Reserved || slot.BookedBy == nil || *slot.BookedBy != ta.ana.ID {
				t.Fatalf("expected slot booked by %s, got %+v", ta.ana.ID, slot)
			}

			assertContains(t, ta.send(t, brunoFrom, "20-04"), "08:00 a 09:00 (Canchas: 2)")
		})
	}
}

func TestCourtbot_ConcurrentSelectionOfSameCourt(t *testing.T) {
	ta := newTestApp(t, config.SessionBackendSQLite)

	for _, from := range []string{anaFrom, brunoFrom} {
		ta.send(t, from, "20-04")
		assertContains(t, ta.send(t, from, "08:00"), "1, 2")
	}

	replies := make(map[string]string)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, from := range []string{anaFrom, brunoFrom} {
		wg.Add(1)
		go func(from string) {
			defer wg.Done()
			form := url.Values{"From": {from}, "Body": {"1"}}
			req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			ta.handler.ServeHTTP(rec, req)
			mu.Lock()
			replies[from] = rec.Body.String()
			mu.Unlock()
		}(from)
	}
	wg.Wait()

	confirmed, conflicted := 0, ""
	for from, reply := range replies {
		switch {
		case strings.Contains(reply, "Reserva confirmada"):
			confirmed++
		case strings.Contains(reply, "ya no está disponible"):
			conflicted = from
		default:
			t.Fatalf("unexpected reply for %s: %q", from, reply)
		}
	}
	if confirmed != 1 || conflicted == "" {
		t.Fatalf("expected one confirmation and one conflict, got %v", replies)
	}

	loserPhone := "56911111111"
	if conflicted == brunoFrom {
		loserPhone = "56922222222"
	}
	session, err := ta.storage.LoadSession(context.Background(), loserPhone)
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if session.Step != "awaiting_time" || session.Time != nil || session.Date == nil || *session.Date != "2024-04-20" {
		t.Fatalf("expected loser demoted to awaiting_time on 2024-04-20, got %+v", session)
	}
}

func TestCourtbot_SessionExpiry(t *testing.T) {
	ta := newTestApp(t, config.SessionBackendSQLite)

	ta.send(t, anaFrom, "20-04")
	assertContains(t, ta.send(t, anaFrom, "08:00"), "1, 2")

	ta.clock.Advance(31 * time.Minute)
	assertContains(t, ta.send(t, anaFrom, "1"), "Hola Ana!")

	if _, err := ta.storage.LoadSession(context.Background(), "56911111111"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be removed, got %v", err)
	}
}

func TestCourtbot_UnregisteredPhone(t *testing.T) {
	ta := newTestApp(t, config.SessionBackendSQLite)

	assertContains(t, ta.send(t, "whatsapp:+56900000000", "20-04"), "no está registrado")
	if _, err := ta.storage.LoadSession(context.Background(), "56900000000"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected no session for unregistered phone, got %v", err)
	}
}

func TestCourtbot_Healthz(t *testing.T) {
	ta := newTestApp(t, config.SessionBackendRedis)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewApp_UnreachableRedis(t *testing.T) {
	cfg := config.Config{
		SQLitePath:     filepath.Join(t.TempDir(), "courtbot.db"),
		SessionBackend: config.SessionBackendRedis,
		RedisAddr:      "127.0.0.1:1",
		Location:       time.UTC,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, nil, logger)
	if err == nil {
		_ = a.Close()
		t.Fatalf("expected error for unreachable redis")
	}
	if !strings.Contains(err.Error(), "connect to redis") {
		t.Fatalf("unexpected error: %v", err)
	}
}
