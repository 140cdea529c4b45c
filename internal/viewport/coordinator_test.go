package viewport

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/NINESTRING/my-place/internal/geo"
	"github.com/NINESTRING/my-place/internal/store"
)

func mustBounds(t *testing.T, swLat, swLng, neLat, neLng float64) geo.Bounds {
	t.Helper()
	b, err := geo.NewBounds(
		geo.Point{Latitude: swLat, Longitude: swLng},
		geo.Point{Latitude: neLat, Longitude: neLng},
	)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	return b
}

func waitSettle(t *testing.T, settled <-chan struct{}) {
	t.Helper()
	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for query to settle")
	}
}

func TestDebounceCoalescesViewportChanges(t *testing.T) {
	var (
		mu      sync.Mutex
		queried []geo.Bounds
		settled = make(chan struct{}, 4)
	)
	query := func(_ context.Context, bounds geo.Bounds) ([]store.Place, error) {
		mu.Lock()
		queried = append(queried, bounds)
		mu.Unlock()
		return nil, nil
	}

	c := New(query,
		WithDebounce(100*time.Millisecond),
		WithSettleFunc(func() { settled <- struct{}{} }),
	)
	defer c.Close()

	view := View{Center: geo.Point{Latitude: 37.5, Longitude: 127.0}, Zoom: 12}
	first := mustBounds(t, 37.0, 126.0, 38.0, 128.0)
	second := mustBounds(t, 37.1, 126.1, 38.1, 128.1)
	final := mustBounds(t, 37.2, 126.2, 38.2, 128.2)

	c.SetViewport(view, first)
	time.Sleep(30 * time.Millisecond)
	c.SetViewport(view, second)
	time.Sleep(30 * time.Millisecond)
	c.SetViewport(view, final)

	waitSettle(t, settled)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(queried) != 1 {
		t.Fatalf("issued %d queries, want 1", len(queried))
	}
	if queried[0] != final {
		t.Errorf("queried bounds = %+v, want bounds of the last change %+v", queried[0], final)
	}
}

func TestLateResponseDoesNotOverwriteNewerResult(t *testing.T) {
	type call struct {
		bounds  geo.Bounds
		release chan []store.Place
	}
	calls := make(chan call, 2)
	settled := make(chan struct{}, 2)

	query := func(_ context.Context, bounds geo.Bounds) ([]store.Place, error) {
		release := make(chan []store.Place)
		calls <- call{bounds: bounds, release: release}
		return <-release, nil
	}

	c := New(query,
		WithDebounce(10*time.Millisecond),
		WithSettleFunc(func() { settled <- struct{}{} }),
	)
	defer c.Close()

	view := View{Zoom: 10}
	c.SetViewport(view, mustBounds(t, 37.0, 126.0, 38.0, 128.0))
	first := <-calls

	c.SetViewport(view, mustBounds(t, 50.0, 8.0, 51.0, 9.0))
	second := <-calls

	resultB := []store.Place{{ID: 2, Description: "second viewport"}}
	second.release <- resultB
	waitSettle(t, settled)

	first.release <- []store.Place{{ID: 1, Description: "first viewport"}}
	waitSettle(t, settled)

	state, places := c.Snapshot()
	if state != StateDisplaying {
		t.Fatalf("state = %v, want StateDisplaying", state)
	}
	if !reflect.DeepEqual(places, resultB) {
		t.Errorf("displayed %+v, want the later-issued query's result %+v", places, resultB)
	}
}

func TestPreviousResultStaysVisibleWhilePending(t *testing.T) {
	release := make(chan []store.Place, 2)
	settled := make(chan struct{}, 2)
	query := func(_ context.Context, _ geo.Bounds) ([]store.Place, error) {
		return <-release, nil
	}

	c := New(query,
		WithDebounce(10*time.Millisecond),
		WithSettleFunc(func() { settled <- struct{}{} }),
	)
	defer c.Close()

	view := View{Zoom: 14}
	initial := []store.Place{{ID: 7, Description: "cafe"}}
	release <- initial
	c.SetViewport(view, mustBounds(t, 37.0, 126.0, 38.0, 128.0))
	waitSettle(t, settled)

	if state, _ := c.Snapshot(); state != StateDisplaying {
		t.Fatalf("state = %v, want StateDisplaying", state)
	}

	c.SetViewport(view, mustBounds(t, 37.1, 126.1, 38.1, 128.1))
	deadline := time.After(2 * time.Second)
	for {
		state, places := c.Snapshot()
		if state == StatePending {
			if !reflect.DeepEqual(places, initial) {
				t.Fatalf("pending snapshot shows %+v, want previous result %+v", places, initial)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("second query never started")
		case <-time.After(time.Millisecond):
		}
	}

	release <- []store.Place{{ID: 8}}
	waitSettle(t, settled)
}

func TestFailedQueryKeepsLastResult(t *testing.T) {
	settled := make(chan struct{}, 2)
	fail := false
	initial := []store.Place{{ID: 3}}
	query := func(_ context.Context, _ geo.Bounds) ([]store.Place, error) {
		if fail {
			return nil, errors.New("upstream unavailable")
		}
		return initial, nil
	}

	c := New(query,
		WithDebounce(10*time.Millisecond),
		WithSettleFunc(func() { settled <- struct{}{} }),
	)
	defer c.Close()

	view := View{}
	c.SetViewport(view, mustBounds(t, 37.0, 126.0, 38.0, 128.0))
	waitSettle(t, settled)

	fail = true
	c.SetViewport(view, mustBounds(t, 37.1, 126.1, 38.1, 128.1))
	waitSettle(t, settled)

	state, places := c.Snapshot()
	if state != StateDisplaying {
		t.Errorf("state = %v, want StateDisplaying", state)
	}
	if !reflect.DeepEqual(places, initial) {
		t.Errorf("displayed %+v, want last good result %+v", places, initial)
	}
}

func TestResumeFromSavedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewport.json")
	fs := NewFileStore(path)

	saved := mustBounds(t, 37.0, 126.0, 38.0, 128.0)
	session := Session{
		View:   View{Center: geo.Point{Latitude: 37.5, Longitude: 127.0}, Zoom: 13},
		Bounds: &saved,
	}
	if err := fs.Save(session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	queried := make(chan geo.Bounds, 1)
	query := func(_ context.Context, bounds geo.Bounds) ([]store.Place, error) {
		queried <- bounds
		return nil, nil
	}

	c := New(query, WithDebounce(10*time.Millisecond), WithSessionStore(fs))
	defer c.Close()

	select {
	case got := <-queried:
		if got != saved {
			t.Errorf("resumed query bounds = %+v, want %+v", got, saved)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no query issued from the saved session")
	}

	if got := c.Session(); got.View != session.View {
		t.Errorf("restored view = %+v, want %+v", got.View, session.View)
	}
}

func TestFileStoreLoadWithoutSession(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "viewport.json"))
	if _, err := fs.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load error = %v, want ErrNoSession", err)
	}
}
