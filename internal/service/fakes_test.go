package service

import (
	"context"
	"io"
	"sync"

	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// fakeLLM replays a fixed script of deltas for every Stream call.
type fakeLLM struct {
	mu       sync.Mutex
	deltas   []string
	startErr error
	recvErr  error
	// hang blocks Recv after the last delta until the stream context ends.
	hang     bool
	requests []CompletionRequest
}

func (f *fakeLLM) Stream(ctx context.Context, req CompletionRequest) (TextStream, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}
	return &fakeStream{ctx: ctx, deltas: f.deltas, err: f.recvErr, hang: f.hang}, nil
}

func (f *fakeLLM) calls() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompletionRequest(nil), f.requests...)
}

type fakeStream struct {
	ctx    context.Context
	deltas []string
	next   int
	err    error
	hang   bool
	closed bool
}

func (s *fakeStream) Recv() (string, error) {
	if s.next < len(s.deltas) {
		s.next++
		return s.deltas[s.next-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	if s.hang {
		<-s.ctx.Done()
		return "", s.ctx.Err()
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeFinder lets each test override one pipeline lookup.
type fakeFinder struct {
	probe  func(ctx context.Context, term string) ([]types.EnrichedWine, error)
	refine func(ctx context.Context, f types.ModelFilter) ([]types.EnrichedWine, error)
}

func (f *fakeFinder) ProbeFoodPairing(ctx context.Context, term string) ([]types.EnrichedWine, error) {
	if f.probe == nil {
		return []types.EnrichedWine{}, nil
	}
	return f.probe(ctx, term)
}

func (f *fakeFinder) Refine(ctx context.Context, filter types.ModelFilter) ([]types.EnrichedWine, error) {
	if f.refine == nil {
		return []types.EnrichedWine{}, nil
	}
	return f.refine(ctx, filter)
}

type fakeAudit struct {
	mu        sync.Mutex
	prompts   []string
	responses []string
	err       error
}

func (a *fakeAudit) RecordPrompt(_ context.Context, prompt, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = append(a.prompts, prompt)
	return a.err
}

func (a *fakeAudit) RecordResponse(_ context.Context, _, _, response string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = append(a.responses, response)
	return a.err
}

// mockStore is a testify mock of CatalogStore.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindWines(ctx context.Context, q types.WineQuery) ([]model.Wine, error) {
	args := m.Called(ctx, q)
	wines, _ := args.Get(0).([]model.Wine)
	return wines, args.Error(1)
}

func (m *mockStore) Wine(ctx context.Context, wineID int64) (*model.Wine, error) {
	args := m.Called(ctx, wineID)
	wine, _ := args.Get(0).(*model.Wine)
	return wine, args.Error(1)
}

func (m *mockStore) FoodPairings(ctx context.Context, wineID int64) ([]string, error) {
	args := m.Called(ctx, wineID)
	pairings, _ := args.Get(0).([]string)
	return pairings, args.Error(1)
}

func (m *mockStore) Vineyard(ctx context.Context, vineyardID int64) (*model.Vineyard, error) {
	args := m.Called(ctx, vineyardID)
	vineyard, _ := args.Get(0).(*model.Vineyard)
	return vineyard, args.Error(1)
}

// eventLog collects emitted events.
type eventLog struct {
	events []types.StreamEvent
	// failAt makes the n-th emit (1-based) fail.
	failAt int
}

func (l *eventLog) emit(ev types.StreamEvent) error {
	l.events = append(l.events, ev)
	if l.failAt > 0 && len(l.events) >= l.failAt {
		return io.ErrClosedPipe
	}
	return nil
}

func (l *eventLog) kinds() []types.EventKind {
	kinds := make([]types.EventKind, len(l.events))
	for i, ev := range l.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (l *eventLog) text() string {
	var out string
	for _, ev := range l.events {
		if ev.Kind == types.EventText {
			out += ev.Text
		}
	}
	return out
}

func wineIDs(wines []types.EnrichedWine) []int64 {
	ids := make([]int64, len(wines))
	for i, w := range wines {
		ids[i] = w.ID
	}
	return ids
}
