package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"cyclekeeper/internal/core/model"
)

// Client talks to the status endpoint of a running instance.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// NewClient creates a client for address (host:port).
func NewClient(address string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: "http://" + address,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:         "cyclekeeper-cli",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Status returns the live countdown.
func (client *Client) Status(ctx context.Context) (View, error) {
	var view View
	err := client.do(ctx, fasthttp.MethodGet, "/status", nil, &view)
	return view, err
}

// Cycles returns the full cycle state.
func (client *Client) Cycles(ctx context.Context) (model.CycleState, error) {
	var state model.CycleState
	err := client.do(ctx, fasthttp.MethodGet, "/cycles", nil, &state)
	return state, err
}

// Start asks the instance to start a cycle.
func (client *Client) Start(ctx context.Context, task string, minutesAmount int) (model.Cycle, error) {
	var cycle model.Cycle
	err := client.do(ctx, fasthttp.MethodPost, "/cycles", StartRequest{Task: task, MinutesAmount: minutesAmount}, &cycle)
	return cycle, err
}

// Interrupt asks the instance to interrupt the running cycle.
func (client *Client) Interrupt(ctx context.Context) (model.Cycle, error) {
	var cycle model.Cycle
	err := client.do(ctx, fasthttp.MethodPost, "/cycles/interrupt", nil, &cycle)
	return cycle, err
}

func (client *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(client.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := client.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var envelope struct {
		Status string          `json:"status"`
		Code   string          `json:"code"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest || envelope.Status != "success" {
		return &APIError{StatusCode: resp.StatusCode(), Code: ErrorCode(envelope.Code), Message: envelope.Error}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
