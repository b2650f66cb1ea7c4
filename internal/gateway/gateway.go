// Package gateway is the client side of the heroes REST contract.
//
// Every operation issues at most one request. On success a line is appended
// to the notification log and the payload is returned as received. On failure
// the error goes to the diagnostic logger, a "<op> failed: <reason>" line goes
// to the notification log, and the operation returns its fallback value. No
// failure reaches the caller, so an empty result and a failed request look the
// same unless the notification log is consulted.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"heroes/internal/messages"
	"heroes/internal/model"
)

// HeroesPath is the collection endpoint relative to the base URL.
const HeroesPath = "/heroes"

// logPrefix marks every notification log entry written by the gateway.
const logPrefix = "HeroGateway: "

// Operation is an operation family, used as the metrics label.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpUpdate Operation = "update"
	OpAdd    Operation = "add"
	OpDelete Operation = "delete"
	OpSearch Operation = "search"
)

// Config holds the backend location.
type Config struct {
	BaseURL string
	// Timeout bounds each request; zero leaves requests bounded only by ctx.
	Timeout time.Duration
}

// Option customises a Gateway.
type Option func(*options)

type options struct {
	lggr       *zap.Logger
	httpClient *http.Client
	reg        prometheus.Registerer
}

// WithLogger sets the diagnostic sink. Defaults to a no-op logger.
func WithLogger(lggr *zap.Logger) Option {
	return func(o *options) { o.lggr = lggr }
}

// WithHTTPClient replaces the default otelhttp-instrumented client. The
// gateway works on a copy, so c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRegisterer registers the operation counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// Gateway performs the hero operations against the backend.
// It is stateless apart from the shared notification log and safe for concurrent use.
type Gateway struct {
	client *resty.Client
	log    *messages.Log
	lggr   *zap.Logger
	ops    *prometheus.CounterVec
}

// New constructs a Gateway that reports to log.
func New(cfg Config, log *messages.Log, opts ...Option) (*Gateway, error) {
	if log == nil {
		return nil, ErrNilLog
	}

	o := options{lggr: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	// resty writes the timeout into the client, so a caller's client is copied.
	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	if o.httpClient != nil {
		c := *o.httpClient
		hc = &c
	}

	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetLogger(o.lggr.Sugar())
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	g := &Gateway{
		client: client,
		log:    log,
		lggr:   o.lggr.Named("hero_gateway"),
	}

	if o.reg != nil {
		g.ops = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hero_gateway_operations_total",
				Help: "Total number of hero gateway operations by outcome.",
			},
			[]string{"operation", "outcome"},
		)
		if err := o.reg.Register(g.ops); err != nil {
			return nil, fmt.Errorf("register gateway metrics: %w", err)
		}
	}

	return g, nil
}

// List returns every hero, or an empty slice on failure.
func (g *Gateway) List(ctx context.Context) []model.Hero {
	const op = "list heroes"
	heroes, ok := call(ctx, g, OpList, op, []model.Hero{}, false, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(HeroesPath)
	})
	if !ok {
		return heroes
	}
	g.succeed(OpList, "fetched heroes")
	return nonNil(heroes)
}

// Get returns the hero with the given id, or nil on failure. An unknown id
// is a failure like any other.
func (g *Gateway) Get(ctx context.Context, id int) *model.Hero {
	op := fmt.Sprintf("get hero id=%d", id)
	hero, ok := call(ctx, g, OpGet, op, (*model.Hero)(nil), false, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(heroPath(id))
	})
	if !ok {
		return hero
	}
	g.succeed(OpGet, fmt.Sprintf("fetched hero id=%d", id))
	return hero
}

// Update replaces the stored hero with h. It returns whatever hero the backend
// answered with, which is nil for an empty response and on failure.
func (g *Gateway) Update(ctx context.Context, h model.Hero) *model.Hero {
	const op = "update hero"
	hero, ok := call(ctx, g, OpUpdate, op, (*model.Hero)(nil), true, func(r *resty.Request) (*resty.Response, error) {
		return jsonRequest(r).SetBody(h).Put(HeroesPath)
	})
	if !ok {
		return hero
	}
	g.succeed(OpUpdate, fmt.Sprintf("updated hero id=%d", h.ID))
	return hero
}

// Add asks the backend to store a new hero and returns it with its assigned
// id, or nil on failure.
func (g *Gateway) Add(ctx context.Context, in model.HeroInput) *model.Hero {
	const op = "add hero"
	hero, ok := call(ctx, g, OpAdd, op, (*model.Hero)(nil), false, func(r *resty.Request) (*resty.Response, error) {
		return jsonRequest(r).SetBody(in).Post(HeroesPath)
	})
	if !ok {
		return hero
	}
	g.succeed(OpAdd, fmt.Sprintf("added hero w/ id=%d", hero.ID))
	return hero
}

// Delete removes the hero identified by ref, which may be a model.Hero or a
// model.HeroID. It returns the removed hero, or nil on failure.
func (g *Gateway) Delete(ctx context.Context, ref model.HeroRef) *model.Hero {
	if ref == nil {
		g.fail(&OperationError{Kind: OpDelete, Op: "delete hero", Err: ErrNilRef})
		return nil
	}

	id := ref.HeroRefID()
	op := fmt.Sprintf("delete hero id=%d", id)
	hero, ok := call(ctx, g, OpDelete, op, (*model.Hero)(nil), false, func(r *resty.Request) (*resty.Response, error) {
		return jsonRequest(r).Delete(heroPath(id))
	})
	if !ok {
		return hero
	}
	g.succeed(OpDelete, fmt.Sprintf("deleted hero id=%d", id))
	return hero
}

// Search returns the heroes whose name contains term, matched by the backend.
// A blank term returns an empty slice without contacting the backend.
func (g *Gateway) Search(ctx context.Context, term string) []model.Hero {
	if strings.TrimSpace(term) == "" {
		return []model.Hero{}
	}

	const op = "search heroes"
	heroes, ok := call(ctx, g, OpSearch, op, []model.Hero{}, false, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("name", term).Get(HeroesPath + "/")
	})
	if !ok {
		return heroes
	}
	g.succeed(OpSearch, fmt.Sprintf("found heroes matching %q", term))
	return nonNil(heroes)
}

// call sends one request and decodes a 2xx body into T. Any failure is
// reported through g.fail and turned into fallback.
func call[T any](
	ctx context.Context,
	g *Gateway,
	kind Operation,
	op string,
	fallback T,
	allowEmpty bool,
	send func(*resty.Request) (*resty.Response, error),
) (T, bool) {
	resp, err := send(g.client.R().SetContext(ctx))
	if err != nil {
		g.fail(&OperationError{Kind: kind, Op: op, StatusCode: statusOf(resp), Err: err})
		return fallback, false
	}

	if resp.IsError() {
		g.fail(&OperationError{
			Kind:       kind,
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err: &StatusError{
				Method: resp.Request.Method,
				Path:   requestPath(resp),
				Status: resp.Status(),
			},
		})
		return fallback, false
	}

	var out T
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		if allowEmpty {
			return out, true
		}
		g.fail(&OperationError{Kind: kind, Op: op, StatusCode: resp.StatusCode(), Err: ErrEmptyBody})
		return fallback, false
	}
	if err := json.Unmarshal(body, &out); err != nil {
		g.fail(&OperationError{
			Kind:       kind,
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("decode response: %w", err),
		})
		return fallback, false
	}
	if !allowEmpty && isNilPointer(out) {
		g.fail(&OperationError{Kind: kind, Op: op, StatusCode: resp.StatusCode(), Err: ErrEmptyBody})
		return fallback, false
	}

	return out, true
}

func (g *Gateway) succeed(kind Operation, msg string) {
	g.lggr.Debug("hero gateway operation succeeded", zap.String("operation", string(kind)))
	g.log.Add(logPrefix + msg)
	g.count(kind, "success")
}

func (g *Gateway) fail(e *OperationError) {
	g.lggr.Error("hero gateway operation failed",
		zap.String("operation", e.Op),
		zap.Int("status", e.StatusCode),
		zap.Error(e.Err),
	)
	g.log.Add(logPrefix + e.Error())
	g.count(e.Kind, "failure")
}

func (g *Gateway) count(kind Operation, outcome string) {
	if g.ops == nil {
		return
	}
	g.ops.WithLabelValues(string(kind), outcome).Inc()
}

func jsonRequest(r *resty.Request) *resty.Request {
	return r.SetHeader("Content-Type", "application/json")
}

func heroPath(id int) string {
	return fmt.Sprintf("%s/%d", HeroesPath, id)
}

func requestPath(resp *resty.Response) string {
	if resp.Request != nil && resp.Request.RawRequest != nil {
		return resp.Request.RawRequest.URL.Path
	}
	return ""
}

func statusOf(resp *resty.Response) int {
	if resp == nil || resp.RawResponse == nil {
		return 0
	}
	return resp.StatusCode()
}

func nonNil(heroes []model.Hero) []model.Hero {
	if heroes == nil {
		return []model.Hero{}
	}
	return heroes
}

// isNilPointer reports whether v is a nil *model.Hero, which a JSON "null" body decodes to.
func isNilPointer(v any) bool {
	h, ok := v.(*model.Hero)
	return ok && h == nil
}
