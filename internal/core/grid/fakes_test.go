package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/access"
)

type updateCall struct {
	ID      ID
	Changed Values
}

type deleteCall struct {
	ID  ID
	Who access.Identity
}

// memSource is an in-memory Source that records every call.
type memSource struct {
	mu      sync.Mutex
	rows    []Row
	nextID  int64
	fetches int
	creates []Values
	updates []updateCall
	deletes []deleteCall

	fetchErr  error
	createErr error
	updateErr error
	deleteErr error
	createID  func(Values) ID
}

func newMemSource(rows ...Row) *memSource {
	return &memSource{rows: rows, nextID: 100}
}

func (m *memSource) Fetch(context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *memSource) Create(_ context.Context, values Values) (ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, values.Clone())
	if m.createErr != nil {
		return "", m.createErr
	}
	var id ID
	if m.createID != nil {
		id = m.createID(values)
	} else {
		m.nextID++
		id = IntID(m.nextID)
	}
	m.rows = append(m.rows, Row{ID: id, Values: values.Clone()})
	return id, nil
}

func (m *memSource) Update(_ context.Context, id ID, changed Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, updateCall{ID: id, Changed: changed.Clone()})
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows[i] = r.With(changed)
			return nil
		}
	}
	return fmt.Errorf("update %s: %w", id, ErrRowNotFound)
}

func (m *memSource) Delete(_ context.Context, id ID, who access.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, deleteCall{ID: id, Who: who})
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memSource) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creates) + len(m.updates) + len(m.deletes)
}

// recorder captures notifier and trigger calls.
type recorder struct {
	mu          sync.Mutex
	errors      []string
	warnings    []string
	infos       []string
	invalidated []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recorder) Warnf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *recorder) Infof(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, fmt.Sprintf(format, args...))
}

func (r *recorder) Invalidate(grid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, grid)
}

func confirmWith(answer bool, prompts *[]string) Confirmer {
	return ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return answer, nil
	})
}

// gatedSource runs calls against the wrapped memSource but holds the reply
// of every armed operation until release is called, so tests can land other
// operations while one is in flight.
type gatedSource struct {
	*memSource
	mu      sync.Mutex
	held    map[string]chan struct{}
	entered chan string
}

func newGatedSource(src *memSource) *gatedSource {
	return &gatedSource{memSource: src, held: make(map[string]chan struct{}), entered: make(chan string, 8)}
}

// arm makes the next replies of op wait for release.
func (g *gatedSource) arm(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held[op] = make(chan struct{})
}

func (g *gatedSource) release(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.held[op])
	delete(g.held, op)
}

func (g *gatedSource) hold(ctx context.Context, op string) error {
	g.mu.Lock()
	release, ok := g.held[op]
	g.mu.Unlock()
	if !ok {
		return nil
	}
	g.entered <- op
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitFor blocks until the armed op has reached the backend.
func (g *gatedSource) waitFor(t *testing.T, op string) {
	t.Helper()
	select {
	case got := <-g.entered:
		require.Equal(t, op, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("%s never reached the source", op)
	}
}

func (g *gatedSource) Fetch(ctx context.Context) ([]Row, error) {
	rows, err := g.memSource.Fetch(ctx)
	if herr := g.hold(ctx, "fetch"); herr != nil {
		return nil, herr
	}
	return rows, err
}

func (g *gatedSource) Create(ctx context.Context, values Values) (ID, error) {
	id, err := g.memSource.Create(ctx, values)
	if herr := g.hold(ctx, "create"); herr != nil {
		return "", herr
	}
	return id, err
}

func (g *gatedSource) Update(ctx context.Context, id ID, changed Values) error {
	err := g.memSource.Update(ctx, id, changed)
	if herr := g.hold(ctx, "update"); herr != nil {
		return herr
	}
	return err
}

func (g *gatedSource) Delete(ctx context.Context, id ID, who access.Identity) error {
	err := g.memSource.Delete(ctx, id, who)
	if herr := g.hold(ctx, "delete"); herr != nil {
		return herr
	}
	return err
}

// removeRow drops a row on the backend without going through the grid.
func (m *memSource) removeRow(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = slices.DeleteFunc(m.rows, func(r Row) bool { return r.ID == id })
}

func uniqueIDs(rows []Row) bool {
	seen := make(map[ID]bool, len(rows))
	for _, r := range rows {
		if seen[r.ID] {
			return false
		}
		seen[r.ID] = true
	}
	return true
}
