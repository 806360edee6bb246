package status

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/core/cycles"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

type fixture struct {
	store   *cycles.Store
	deriver *countdown.Deriver
	server  *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: t0}
	store := cycles.NewStore(clock, nil)
	deriver := countdown.New(store, countdown.Transitions{
		Finish:    store.FinishCycle,
		Interrupt: store.InterruptCycle,
	}, clock, countdown.Config{TickInterval: time.Hour}, nil)
	t.Cleanup(deriver.Stop)
	return &fixture{
		store:   store,
		deriver: deriver,
		server:  NewServer("test", store, deriver, nil),
	}
}

func (f *fixture) call(t *testing.T, method, path, body string) (*fasthttp.RequestCtx, envelopeBody) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	f.server.Handler()(&ctx)
	f.deriver.Sync()

	var decoded envelopeBody
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &decoded))
	return &ctx, decoded
}

type envelopeBody struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func TestStatusIdle(t *testing.T) {
	f := newFixture(t)
	ctx, body := f.call(t, fasthttp.MethodGet, "/status", "")

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "success", body.Status)

	var view View
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.False(t, view.Active)
	assert.Equal(t, "00", view.Minutes)
	assert.Equal(t, "00", view.Seconds)
	assert.Equal(t, countdown.DefaultIdleTitle, view.Title)
}

func TestStatusFollowsCountdownBeforeSync(t *testing.T) {
	f := newFixture(t)
	cycle := cycles.NewCycle("focus", 5, t0)
	f.store.AddNewCycle(cycle)

	// The countdown has not caught up with the store yet.
	_, body := f.call(t, fasthttp.MethodGet, "/status", "")
	var view View
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.False(t, view.Active)
	assert.Empty(t, view.CycleID)
	assert.Equal(t, countdown.DefaultIdleTitle, view.Title)

	f.store.InterruptCurrentCycle()
	_, body = f.call(t, fasthttp.MethodGet, "/status", "")
	view = View{}
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.True(t, view.Active)
	assert.Equal(t, cycle.ID, view.CycleID)
	assert.Equal(t, "05:00", view.Title)
}

func TestStartCycle(t *testing.T) {
	f := newFixture(t)
	ctx, body := f.call(t, fasthttp.MethodPost, "/cycles", `{"task":"  Write report ","minutes_amount":25}`)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	assert.Equal(t, "success", body.Status)

	active, ok := f.store.ActiveCycle()
	require.True(t, ok)
	assert.Equal(t, "Write report", active.Task)
	assert.Equal(t, 25, active.MinutesAmount)
	assert.Equal(t, t0, active.StartDate)

	_, statusBody := f.call(t, fasthttp.MethodGet, "/status", "")
	var view View
	require.NoError(t, json.Unmarshal(statusBody.Data, &view))
	assert.True(t, view.Active)
	assert.Equal(t, active.ID, view.CycleID)
	assert.Equal(t, "25", view.Minutes)
	assert.Equal(t, "25:00", view.Title)
}

func TestStartCycleErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   ErrorCode
	}{
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalid},
		{name: "empty task", body: `{"task":" ","minutes_amount":5}`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalid},
		{name: "zero minutes", body: `{"task":"x","minutes_amount":0}`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalid},
		{name: "too long", body: `{"task":"x","minutes_amount":601}`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx, body := f.call(t, fasthttp.MethodPost, "/cycles", tt.body)
			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, string(tt.wantCode), body.Code)
			assert.Empty(t, f.store.Cycles())
		})
	}
}

func TestStartCycleConflict(t *testing.T) {
	f := newFixture(t)
	f.call(t, fasthttp.MethodPost, "/cycles", `{"task":"first","minutes_amount":5}`)
	ctx, body := f.call(t, fasthttp.MethodPost, "/cycles", `{"task":"second","minutes_amount":5}`)

	assert.Equal(t, http.StatusConflict, ctx.Response.StatusCode())
	assert.Equal(t, string(ErrCodeConflict), body.Code)
	assert.Len(t, f.store.Cycles(), 1)
}

func TestInterruptCycle(t *testing.T) {
	f := newFixture(t)
	ctx, body := f.call(t, fasthttp.MethodPost, "/cycles/interrupt", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, string(ErrCodeNotFound), body.Code)

	f.call(t, fasthttp.MethodPost, "/cycles", `{"task":"focus","minutes_amount":5}`)
	ctx, _ = f.call(t, fasthttp.MethodPost, "/cycles/interrupt", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	history := f.store.Cycles()
	require.Len(t, history, 1)
	assert.NotNil(t, history[0].InterruptedDate)
	assert.False(t, f.deriver.Running())
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	ctx, body := f.call(t, fasthttp.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, string(ErrCodeNotFound), body.Code)
}

func TestClientRoundTrip(t *testing.T) {
	f := newFixture(t)
	listener := fasthttputil.NewInmemoryListener()
	go func() { _ = f.server.Serve(listener) }()
	t.Cleanup(func() { _ = f.server.Shutdown() })

	client := NewClient("cyclekeeper.test", time.Second)
	client.http.Dial = func(string) (net.Conn, error) { return listener.Dial() }
	ctx := context.Background()

	cycle, err := client.Start(ctx, "Deep work", 50)
	require.NoError(t, err)
	assert.Equal(t, "Deep work", cycle.Task)
	f.deriver.Sync()

	view, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, view.Active)
	assert.Equal(t, "50:00", view.Title)

	_, err = client.Start(ctx, "Other", 5)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeConflict))

	interrupted, err := client.Interrupt(ctx)
	require.NoError(t, err)
	assert.Equal(t, cycle.ID, interrupted.ID)
	assert.NotNil(t, interrupted.InterruptedDate)

	state, err := client.Cycles(ctx)
	require.NoError(t, err)
	require.Len(t, state.Cycles, 1)
	assert.Empty(t, state.ActiveCycleID)

	_, err = client.Interrupt(ctx)
	assert.True(t, IsCode(err, ErrCodeNotFound))
}
