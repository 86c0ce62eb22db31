package bridge

import (
	"os"
	"testing"
	"time"
)

func TestSendFallsBackWhenNoListener(t *testing.T) {
	repoRoot := t.TempDir()
	ev := Event{Event: "Stop", Branch: "feature/x", ReceivedAt: time.Now()}

	if err := Send(repoRoot, ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	srv, err := Listen(repoRoot)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	select {
	case got := <-srv.Events():
		if got.Event != "Stop" || got.Branch != "feature/x" {
			t.Errorf("drained event = %+v, want Stop/feature/x", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for drained fallback event")
	}
}

func TestSendDeliversOverSocketWhenListening(t *testing.T) {
	repoRoot := t.TempDir()
	srv, err := Listen(repoRoot)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	ev := Event{Event: "UserPromptSubmit", Branch: "main"}
	if err := Send(repoRoot, ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-srv.Events():
		if got.Event != "UserPromptSubmit" {
			t.Errorf("got event %q, want UserPromptSubmit", got.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for socket-delivered event")
	}
}

func TestCloseRemovesSocketFile(t *testing.T) {
	repoRoot := t.TempDir()
	srv, err := Listen(repoRoot)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(SocketPath(repoRoot)); !os.IsNotExist(err) {
		t.Fatalf("socket file still present after Close (stat err = %v)", err)
	}

	// A second Listen on the same repoRoot must still succeed after Close.
	srv2, err := Listen(repoRoot)
	if err != nil {
		t.Fatalf("second Listen: %v", err)
	}
	srv2.Close()
}
