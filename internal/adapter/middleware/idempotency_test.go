package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const testPath = "/api/v1/contracts"

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	log, _ := test.NewNullLogger()
	e.Use(Idempotency(rdb, ttl, log))
	e.POST(testPath, handler)
	e.GET(testPath, handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders(reqID string) map[string]string {
	return map[string]string{
		HeaderRequestID: reqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// simple handler to exercise respRecorder capture & saveFinal
func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, testPath, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	valid := validHeaders(strings.Repeat("a", 32))

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", map[string]string{HeaderRequestAt: valid[HeaderRequestAt]}},
		{"invalid request id", map[string]string{HeaderRequestID: "NOT-VALID", HeaderRequestAt: valid[HeaderRequestAt]}},
		{"missing request at", map[string]string{HeaderRequestID: valid[HeaderRequestID]}},
		{"invalid request at", map[string]string{HeaderRequestID: valid[HeaderRequestID], HeaderRequestAt: "not-a-time"}},
		{"request at skewed past", map[string]string{
			HeaderRequestID: valid[HeaderRequestID],
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
		{"request at skewed future", map[string]string{
			HeaderRequestID: valid[HeaderRequestID],
			HeaderRequestAt: time.Now().UTC().Add(maxClockSkew + time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, map[string]int{"x": 1}), tc.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_UppercaseRequestIDIsNormalised(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, map[string]int{"x": 1}), validHeaders(strings.Repeat("A", 32)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d", rec.Code)
	}
	if !mr.Exists(buildKey(http.MethodPost, testPath, "anonymous", strings.Repeat("a", 32))) {
		t.Fatalf("expected lower-cased key, have %v", mr.Keys())
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]any{"call": n})
	})

	h := validHeaders(strings.Repeat("a", 32))
	body := map[string]any{"principal": "1000.00"}

	// First request -> goes through handler
	rec1 := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, body), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Second request with SAME headers & body -> replay stored response
	rec2 := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, body), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay header missing")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func Test_SameRequestID_DifferentOperators_AreIndependent(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := echo.New()
	log, _ := test.NewNullLogger()
	asOperator := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(operatorKey, c.Request().Header.Get("X-Test-Operator"))
			return next(c)
		}
	}
	e.POST(testPath, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	}, asOperator, Idempotency(rdb, time.Minute, log))

	for _, op := range []string{"alice", "bob"} {
		h := validHeaders(strings.Repeat("a", 32))
		h["X-Test-Operator"] = op
		if rec := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusCreated {
			t.Fatalf("%s => want 201, got %d", op, rec.Code)
		}
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	reqID := strings.Repeat("a", 32)
	body := []byte(`{"x":1}`)

	// Seed provisional "in-progress" entry (so SetNX will fail and loadEntry sees InProgress=true)
	key := buildKey(http.MethodPost, testPath, "anonymous", reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, testPath, bytes.NewReader(body), validHeaders(reqID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	reqID := strings.Repeat("a", 32)
	body1 := []byte(`{"x":1}`)
	body2 := []byte(`{"x":2}`)

	key := buildKey(http.MethodPost, testPath, "anonymous", reqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusCreated,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash(body1),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, time.Minute*5); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, testPath, bytes.NewReader(body2), validHeaders(reqID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_ServerError_IsNotStored(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	h := validHeaders(strings.Repeat("c", 32))
	if rec := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec.Code)
	}
	if rec := doReq(t, e, http.MethodPost, testPath, mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusCreated {
		t.Fatalf("retry => want 201, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// Client pointing at a closed address -> SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(Idempotency(rdb, time.Minute, log))
	e.POST(testPath, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, testPath, bytes.NewReader([]byte(`{}`)), validHeaders(strings.Repeat("a", 32)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("expected an error log entry, got %+v", hook.AllEntries())
	}
}
