package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rules"
)

func largeTree(t *testing.T, files int) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < files; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("d%d", i%20), fmt.Sprintf("f%04d.tmp", i)))
	}
	return root
}

func TestControllerRunsScanToCompletion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmp"))

	ctrl := NewController()
	outcome := <-ctrl.Start(context.Background(), root, rules.Parse("- **/*.tmp\n"), DefaultOptions(), nil)
	if outcome.Err != nil {
		t.Fatalf("scan failed: %v", outcome.Err)
	}
	if outcome.Cancelled() {
		t.Error("completed scan reported cancelled")
	}
	if outcome.Payload.Stats.Matched != 1 {
		t.Errorf("stats = %+v", outcome.Payload.Stats)
	}
}

func TestControllerStartCancelsActiveScan(t *testing.T) {
	root := largeTree(t, 3000)
	ruleList := rules.Parse("- **/*.tmp\n")
	ctrl := NewController()

	started := make(chan struct{})
	var once bool
	first := ctrl.Start(context.Background(), root, ruleList, DefaultOptions().WithEmitEvery(10), func(p entry.Progress) {
		if !once {
			once = true
			close(started)
		}
	})
	<-started
	ctrl.Pause()

	second := ctrl.Start(context.Background(), root, ruleList, DefaultOptions(), nil)

	firstOut := <-first
	if !firstOut.Cancelled() {
		t.Errorf("first scan should be cancelled, got err=%v", firstOut.Err)
	}
	secondOut := <-second
	if secondOut.Err != nil {
		t.Fatalf("second scan failed: %v", secondOut.Err)
	}
	if secondOut.Payload == nil || secondOut.Payload.Stats.Matched == 0 {
		t.Error("second scan produced no results")
	}
}

func TestControllerCancelIdempotent(t *testing.T) {
	ctrl := NewController()
	ctrl.Cancel()
	ctrl.Cancel()
	ctrl.Wait()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmp"))
	outcome := <-ctrl.Start(context.Background(), root, rules.Parse("- **/*.tmp\n"), DefaultOptions(), nil)
	if outcome.Err != nil {
		t.Fatalf("scan after no-op cancels failed: %v", outcome.Err)
	}

	// Cancel after completion has no effect.
	ctrl.Cancel()
	ctrl.Wait()
}

func TestControllerPauseResume(t *testing.T) {
	root := largeTree(t, 500)
	ctrl := NewController()

	opts := DefaultOptions().WithEmitEvery(10).WithPausePoll(5 * time.Millisecond)
	progressed := make(chan struct{}, 1)
	outcome := ctrl.Start(context.Background(), root, rules.Parse("- **/*.tmp\n"), opts, func(p entry.Progress) {
		select {
		case progressed <- struct{}{}:
		default:
		}
	})

	<-progressed
	ctrl.Pause()
	ctrl.Resume()

	out := <-outcome
	if out.Err != nil {
		t.Fatalf("scan failed: %v", out.Err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal(err)
	}
}
