package status

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/core/model"
	"cyclekeeper/internal/validation"
)

// CycleService is the slice of the cycle store the endpoint drives.
type CycleService interface {
	State() model.CycleState
	ActiveCycle() (model.Cycle, bool)
	StartCycle(cycle model.Cycle) bool
	InterruptCycle(cycleID string)
	Clock() cycles.Clock
}

// CountdownReader exposes the live countdown.
type CountdownReader interface {
	Snapshot() (countdown.Display, string)
}

// Server serves the local control endpoint of a running instance.
type Server struct {
	cycles    CycleService
	countdown CountdownReader
	logger    *zap.Logger
	http      *fasthttp.Server
}

// NewServer wires the routes.
func NewServer(name string, service CycleService, reader CountdownReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		cycles:    service,
		countdown: reader,
		logger:    logger,
	}
	server.http = &fasthttp.Server{
		Handler:      server.Handler(),
		Name:         name,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	return server
}

// Handler returns the routed request handler.
func (server *Server) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.GET("/status", server.getStatus)
	r.GET("/cycles", server.getCycles)
	r.POST("/cycles", server.startCycle)
	r.POST("/cycles/interrupt", server.interruptCycle)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		respondJSON(ctx, http.StatusNotFound, NewError(string(ErrCodeNotFound), "unknown route"))
	}
	return r.Handler
}

// Serve blocks serving requests on listener until Shutdown.
func (server *Server) Serve(listener net.Listener) error {
	server.logger.Info("status endpoint started", zap.String("address", listener.Addr().String()))
	err := server.http.Serve(listener)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (server *Server) Shutdown() error {
	return server.http.Shutdown()
}

func (server *Server) getStatus(ctx *fasthttp.RequestCtx) {
	respondSuccess(ctx, http.StatusOK, server.view())
}

func (server *Server) view() View {
	display, title := server.countdown.Snapshot()
	return View{
		Active:         display.Active,
		CycleID:        display.CycleID,
		Task:           display.Task,
		Minutes:        display.Minutes,
		Seconds:        display.Seconds,
		CurrentSeconds: display.CurrentSeconds,
		TotalSeconds:   display.TotalSeconds,
		Title:          title,
	}
}

func (server *Server) getCycles(ctx *fasthttp.RequestCtx) {
	state := server.cycles.State()
	if state.Cycles == nil {
		state.Cycles = []model.Cycle{}
	}
	respondSuccess(ctx, http.StatusOK, state)
}

func (server *Server) startCycle(ctx *fasthttp.RequestCtx) {
	var req StartRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		respondJSON(ctx, http.StatusBadRequest, NewError(string(ErrCodeInvalid), "invalid payload"))
		return
	}

	input, err := validation.CycleInput{Task: req.Task, MinutesAmount: req.MinutesAmount}.Validate()
	if err != nil {
		server.respondError(ctx, err)
		return
	}

	cycle := cycles.NewCycle(input.Task, input.MinutesAmount, server.cycles.Clock().Now())
	if !server.cycles.StartCycle(cycle) {
		server.respondError(ctx, ErrCycleActive)
		return
	}
	server.logger.Info("cycle started remotely", zap.String("cycle_id", cycle.ID), zap.String("task", cycle.Task))
	respondSuccess(ctx, http.StatusCreated, cycle)
}

func (server *Server) interruptCycle(ctx *fasthttp.RequestCtx) {
	cycle, ok := server.cycles.ActiveCycle()
	if !ok {
		server.respondError(ctx, ErrNoActiveCycle)
		return
	}
	server.cycles.InterruptCycle(cycle.ID)
	server.logger.Info("cycle interrupted remotely", zap.String("cycle_id", cycle.ID))

	for _, stored := range server.cycles.State().Cycles {
		if stored.ID == cycle.ID {
			respondSuccess(ctx, http.StatusOK, stored)
			return
		}
	}
	respondSuccess(ctx, http.StatusOK, cycle)
}

func (server *Server) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		server.logger.Error("status request failed", zap.Error(err))
	}
	respondJSON(ctx, status, NewError(string(code), err.Error()))
}

func respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	respondJSON(ctx, status, NewSuccess(data))
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
