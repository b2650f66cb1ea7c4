package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"heroes/internal/messages"
	"heroes/internal/model"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        string
}

// fakeBackend serves the heroes contract from memory and records every request.
type fakeBackend struct {
	mu       sync.Mutex
	heroes   []model.Hero
	requests []recordedRequest
	// failStatus, when non-zero, is returned for every request.
	failStatus int
}

func newFakeBackend(heroes ...model.Hero) *fakeBackend {
	return &fakeBackend{heroes: heroes}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})

	if f.failStatus != 0 {
		http.Error(w, "backend failure", f.failStatus)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/heroes" && r.Method == http.MethodGet:
		name := r.URL.Query().Get("name")
		out := []model.Hero{}
		for _, h := range f.heroes {
			if strings.Contains(strings.ToLower(h.Name), strings.ToLower(name)) {
				out = append(out, h)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case path == "/heroes" && r.Method == http.MethodPost:
		var in model.HeroInput
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		next := 11
		for _, h := range f.heroes {
			if h.ID >= next {
				next = h.ID + 1
			}
		}
		h := model.Hero{ID: next, Name: in.Name}
		f.heroes = append(f.heroes, h)
		writeJSON(w, http.StatusCreated, h)
	case path == "/heroes" && r.Method == http.MethodPut:
		var in model.Hero
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		for i, h := range f.heroes {
			if h.ID == in.ID {
				f.heroes[i] = in
				writeJSON(w, http.StatusOK, in)
				return
			}
		}
		http.NotFound(w, r)
	case strings.HasPrefix(path, "/heroes/"):
		id, err := strconv.Atoi(strings.TrimPrefix(path, "/heroes/"))
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		for i, h := range f.heroes {
			if h.ID != id {
				continue
			}
			if r.Method == http.MethodDelete {
				f.heroes = append(f.heroes[:i], f.heroes[i+1:]...)
			}
			writeJSON(w, http.StatusOK, h)
			return
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	gw      *Gateway
	log     *messages.Log
	backend *fakeBackend
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T, handler http.Handler, backend *fakeBackend, opts ...Option) *harness {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	log := messages.New()

	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	gw, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, log, opts...)
	require.NoError(t, err)

	return &harness{gw: gw, log: log, backend: backend, logs: logs}
}

func newFakeHarness(t *testing.T, heroes ...model.Hero) *harness {
	backend := newFakeBackend(heroes...)
	return newHarness(t, backend, backend)
}

var (
	drNice   = model.Hero{ID: 12, Name: "Dr Nice"}
	bombasto = model.Hero{ID: 13, Name: "Bombasto"}
)

func TestNew(t *testing.T) {
	t.Run("nil log", func(t *testing.T) {
		gw, err := New(Config{BaseURL: "http://localhost"}, nil)
		assert.ErrorIs(t, err, ErrNilLog)
		assert.Nil(t, gw)
	})

	t.Run("duplicate metrics registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := New(Config{BaseURL: "http://localhost"}, messages.New(), WithRegisterer(reg))
		require.NoError(t, err)

		_, err = New(Config{BaseURL: "http://localhost"}, messages.New(), WithRegisterer(reg))
		assert.Error(t, err)
	})
}

func TestGateway_List(t *testing.T) {
	h := newFakeHarness(t, drNice, bombasto)

	heroes := h.gw.List(context.Background())

	assert.Equal(t, []model.Hero{drNice, bombasto}, heroes)
	assert.Equal(t, []string{"HeroGateway: fetched heroes"}, h.log.Messages())

	reqs := h.backend.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/heroes", reqs[0].Path)
}

func TestGateway_List_EmptyCollection(t *testing.T) {
	h := newFakeHarness(t)

	heroes := h.gw.List(context.Background())

	assert.NotNil(t, heroes)
	assert.Empty(t, heroes)
	assert.Equal(t, []string{"HeroGateway: fetched heroes"}, h.log.Messages())
}

func TestGateway_Get(t *testing.T) {
	h := newFakeHarness(t, drNice, bombasto)

	hero := h.gw.Get(context.Background(), 13)

	require.NotNil(t, hero)
	assert.Equal(t, bombasto, *hero)
	assert.Equal(t, []string{"HeroGateway: fetched hero id=13"}, h.log.Messages())
	assert.Equal(t, "/heroes/13", h.backend.recorded()[0].Path)
}

func TestGateway_Get_NotFound(t *testing.T) {
	h := newFakeHarness(t, drNice, bombasto)

	var hero *model.Hero
	assert.NotPanics(t, func() {
		hero = h.gw.Get(context.Background(), 999)
	})

	assert.Nil(t, hero)
	msgs := h.log.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "HeroGateway: get hero id=999 failed: "))
	assert.Contains(t, msgs[0], "404")

	entries := h.logs.FilterMessage("hero gateway operation failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "get hero id=999", fields["operation"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

func TestGateway_Update(t *testing.T) {
	h := newFakeHarness(t, drNice)

	renamed := model.Hero{ID: 12, Name: "Dr Nicer"}
	hero := h.gw.Update(context.Background(), renamed)

	require.NotNil(t, hero)
	assert.Equal(t, renamed, *hero)
	assert.Equal(t, []string{"HeroGateway: updated hero id=12"}, h.log.Messages())

	req := h.backend.recorded()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/heroes", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"id":12,"name":"Dr Nicer"}`, req.Body)
}

func TestGateway_Update_NoContent(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	hero := h.gw.Update(context.Background(), drNice)

	assert.Nil(t, hero)
	assert.Equal(t, []string{"HeroGateway: updated hero id=12"}, h.log.Messages())
}

func TestGateway_Add(t *testing.T) {
	h := newFakeHarness(t, model.SeedHeroes()...)

	hero := h.gw.Add(context.Background(), model.HeroInput{Name: "Zantar"})

	require.NotNil(t, hero)
	assert.Equal(t, 21, hero.ID)
	assert.Equal(t, "Zantar", hero.Name)
	assert.Equal(t, []string{"HeroGateway: added hero w/ id=21"}, h.log.Messages())

	req := h.backend.recorded()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.ContentType)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.NotContains(t, sent, "id")
	assert.Equal(t, "Zantar", sent["name"])
}

func TestGateway_Add_EmptyBody(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}), nil)

	hero := h.gw.Add(context.Background(), model.HeroInput{Name: "Zantar"})

	assert.Nil(t, hero)
	assert.Equal(t, []string{"HeroGateway: add hero failed: empty response body"}, h.log.Messages())
}

func TestGateway_Delete(t *testing.T) {
	h := newFakeHarness(t, drNice, bombasto)

	hero := h.gw.Delete(context.Background(), bombasto)

	require.NotNil(t, hero)
	assert.Equal(t, bombasto, *hero)
	assert.Equal(t, []string{"HeroGateway: deleted hero id=13"}, h.log.Messages())

	req := h.backend.recorded()[0]
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/heroes/13", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
}

func TestGateway_Delete_RecordAndIDSendSameRequest(t *testing.T) {
	byRecord := newFakeHarness(t, drNice, bombasto)
	byID := newFakeHarness(t, drNice, bombasto)

	byRecord.gw.Delete(context.Background(), bombasto)
	byID.gw.Delete(context.Background(), model.HeroID(bombasto.ID))

	assert.Equal(t, byRecord.backend.recorded(), byID.backend.recorded())
	assert.Equal(t, byRecord.log.Messages(), byID.log.Messages())
}

func TestGateway_Delete_NilRef(t *testing.T) {
	h := newFakeHarness(t, drNice)

	hero := h.gw.Delete(context.Background(), nil)

	assert.Nil(t, hero)
	assert.Empty(t, h.backend.recorded())
	assert.Equal(t, []string{"HeroGateway: delete hero failed: hero reference is nil"}, h.log.Messages())
}

func TestGateway_Search(t *testing.T) {
	h := newFakeHarness(t, drNice, bombasto)

	heroes := h.gw.Search(context.Background(), "bom")

	assert.Equal(t, []model.Hero{bombasto}, heroes)
	assert.Equal(t, []string{`HeroGateway: found heroes matching "bom"`}, h.log.Messages())

	req := h.backend.recorded()[0]
	assert.Equal(t, "/heroes/", req.Path)
	assert.Equal(t, "name=bom", req.Query)
}

func TestGateway_Search_PassesBackendMatchThrough(t *testing.T) {
	var gotName string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		writeJSON(w, http.StatusOK, []model.Hero{bombasto})
	}), nil)

	heroes := h.gw.Search(context.Background(), "ben")

	assert.Equal(t, "ben", gotName)
	assert.Equal(t, []model.Hero{bombasto}, heroes)
}

func TestGateway_Search_EscapesTerm(t *testing.T) {
	var gotName string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		writeJSON(w, http.StatusOK, []model.Hero{})
	}), nil)

	h.gw.Search(context.Background(), "dr & co=1")

	assert.Equal(t, "dr & co=1", gotName)
}

func TestGateway_Search_BlankTerm(t *testing.T) {
	for _, term := range []string{"", "   ", "\t\n"} {
		t.Run(strconv.Quote(term), func(t *testing.T) {
			h := newFakeHarness(t, drNice, bombasto)

			heroes := h.gw.Search(context.Background(), term)

			assert.NotNil(t, heroes)
			assert.Empty(t, heroes)
			assert.Empty(t, h.backend.recorded())
			assert.Equal(t, 0, h.log.Len())
		})
	}
}

func TestGateway_BackendFailure(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		invoke func(gw *Gateway) any
		want   any
	}{
		{
			name:   "list",
			op:     "list heroes",
			invoke: func(gw *Gateway) any { return gw.List(context.Background()) },
			want:   []model.Hero{},
		},
		{
			name:   "get",
			op:     "get hero id=12",
			invoke: func(gw *Gateway) any { return gw.Get(context.Background(), 12) },
			want:   (*model.Hero)(nil),
		},
		{
			name:   "update",
			op:     "update hero",
			invoke: func(gw *Gateway) any { return gw.Update(context.Background(), drNice) },
			want:   (*model.Hero)(nil),
		},
		{
			name:   "add",
			op:     "add hero",
			invoke: func(gw *Gateway) any { return gw.Add(context.Background(), model.HeroInput{Name: "Zantar"}) },
			want:   (*model.Hero)(nil),
		},
		{
			name:   "delete",
			op:     "delete hero id=12",
			invoke: func(gw *Gateway) any { return gw.Delete(context.Background(), model.HeroID(12)) },
			want:   (*model.Hero)(nil),
		},
		{
			name:   "search",
			op:     "search heroes",
			invoke: func(gw *Gateway) any { return gw.Search(context.Background(), "nice") },
			want:   []model.Hero{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFakeHarness(t, drNice)
			h.backend.failStatus = http.StatusInternalServerError

			got := tt.invoke(h.gw)

			assert.Equal(t, tt.want, got)
			msgs := h.log.Messages()
			require.Len(t, msgs, 1)
			assert.True(t, strings.HasPrefix(msgs[0], "HeroGateway: "+tt.op+" failed: "), msgs[0])
			assert.Contains(t, msgs[0], "500 Internal Server Error")
			assert.Equal(t, 1, h.logs.FilterMessage("hero gateway operation failed").Len())
		})
	}
}

func TestGateway_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	log := messages.New()
	gw, err := New(Config{BaseURL: baseURL}, log, WithLogger(zap.New(core)))
	require.NoError(t, err)

	heroes := gw.List(context.Background())

	assert.Equal(t, []model.Hero{}, heroes)
	msgs := log.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "HeroGateway: list heroes failed: "))

	entries := logs.FilterMessage("hero gateway operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].ContextMap()["status"])
}

func TestGateway_MalformedBody(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":`))
	}), nil)

	hero := h.gw.Get(context.Background(), 12)

	assert.Nil(t, hero)
	msgs := h.log.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "get hero id=12 failed: decode response")
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	log := messages.New()
	gw, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, log)
	require.NoError(t, err)

	hero := gw.Get(context.Background(), 12)

	assert.Nil(t, hero)
	require.Equal(t, 1, log.Len())
	assert.Contains(t, log.Messages()[0], "get hero id=12 failed: ")
}

func TestGateway_CanceledContext(t *testing.T) {
	h := newFakeHarness(t, drNice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	heroes := h.gw.List(ctx)

	assert.Equal(t, []model.Hero{}, heroes)
	require.Equal(t, 1, h.log.Len())
	assert.Contains(t, h.log.Messages()[0], "list heroes failed: ")
}

func TestGateway_OperationErrorUnwraps(t *testing.T) {
	opErr := &OperationError{Kind: OpGet, Op: "get hero id=1", StatusCode: 404, Err: ErrEmptyBody}

	assert.Equal(t, "get hero id=1 failed: empty response body", opErr.Error())
	assert.True(t, errors.Is(opErr, ErrEmptyBody))

	var target *OperationError
	assert.True(t, errors.As(error(opErr), &target))
	assert.Equal(t, OpGet, target.Kind)
}

func TestGateway_Metrics(t *testing.T) {
	backend := newFakeBackend(drNice)
	reg := prometheus.NewRegistry()
	h := newHarness(t, backend, backend, WithRegisterer(reg))

	h.gw.List(context.Background())
	h.gw.Get(context.Background(), 12)
	h.gw.Get(context.Background(), 999)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.gw.ops.WithLabelValues("list", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.gw.ops.WithLabelValues("get", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.gw.ops.WithLabelValues("get", "failure")))
}

func TestGateway_WithHTTPClient(t *testing.T) {
	backend := newFakeBackend(drNice)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := messages.New()
	gw, err := New(Config{BaseURL: srv.URL + "/"}, log, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	assert.Equal(t, []model.Hero{drNice}, gw.List(context.Background()))
	assert.Equal(t, "/heroes", backend.recorded()[0].Path)
}

func TestGateway_WithHTTPClient_LeavesCallerClientUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, drNice)
	}))
	t.Cleanup(srv.Close)

	shared := &http.Client{}
	log := messages.New()
	gw, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, log, WithHTTPClient(shared))
	require.NoError(t, err)

	assert.Zero(t, shared.Timeout)
	assert.Nil(t, gw.Get(context.Background(), 12))
	require.Equal(t, 1, log.Len())
	assert.Contains(t, log.Messages()[0], "HeroGateway: get hero id=12 failed:")
}

func TestGateway_ConcurrentOperationsShareLog(t *testing.T) {
	h := newFakeHarness(t, model.SeedHeroes()...)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h.gw.Get(context.Background(), id)
		}(11 + i%10)
	}
	wg.Wait()

	assert.Equal(t, n, h.log.Len())
	for _, msg := range h.log.Messages() {
		assert.True(t, strings.HasPrefix(msg, "HeroGateway: fetched hero id="), msg)
	}
}
