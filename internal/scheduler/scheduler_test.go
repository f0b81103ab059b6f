package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/veikko/comicshelf/internal/notifications"
	syncengine "github.com/veikko/comicshelf/internal/sync"
)

type fakeRunner struct {
	mu     sync.Mutex
	result syncengine.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(_ context.Context) (syncengine.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	messages []notifications.Message
}

func (f *fakeNotifier) Notify(_ context.Context, message notifications.Message) error {
	f.messages = append(f.messages, message)
	return nil
}

func TestRunOnce_NotifiesWhenNewIssuesArrive(t *testing.T) {
	runner := &fakeRunner{result: syncengine.Result{Issues: syncengine.ChangeSet{Added: 3}}}
	notifier := &fakeNotifier{}

	s := New(runner, notifier, Config{Interval: time.Minute}, nil)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if len(notifier.messages) != 2 {
		t.Fatalf("expected completion plus new-issues notifications, got %d", len(notifier.messages))
	}
	if notifier.messages[0].Event != notifications.EventSyncCompleted {
		t.Fatalf("unexpected first event %q", notifier.messages[0].Event)
	}
	if notifier.messages[1].Event != notifications.EventNewIssues {
		t.Fatalf("unexpected second event %q", notifier.messages[1].Event)
	}
}

func TestRunOnce_NoNewIssuesEventWithoutAdds(t *testing.T) {
	runner := &fakeRunner{result: syncengine.Result{Issues: syncengine.ChangeSet{Updated: 5}}}
	notifier := &fakeNotifier{}

	s := New(runner, notifier, Config{Interval: time.Minute}, nil)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected only the completion notification, got %v", notifier.messages)
	}
	if notifier.messages[0].Event != notifications.EventSyncCompleted {
		t.Fatalf("unexpected event %q", notifier.messages[0].Event)
	}
}

func TestRunOnce_CoalescesWhenSyncAlreadyRunning(t *testing.T) {
	runner := &fakeRunner{err: syncengine.ErrSyncRunning}

	s := New(runner, &fakeNotifier{}, Config{Interval: time.Minute}, nil)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("a coalesced trigger must not be an error, got %v", err)
	}
}

func TestRunOnce_PropagatesSyncFailure(t *testing.T) {
	cause := errors.New("catalog down")
	runner := &fakeRunner{err: cause}

	s := New(runner, &fakeNotifier{}, Config{Interval: time.Minute}, nil)
	if err := s.RunOnce(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, &fakeNotifier{}, Config{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runner.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if runner.callCount() == 0 {
		t.Fatalf("expected an immediate first run")
	}

	cancel()
	s.StopWait(2 * time.Second)
}
