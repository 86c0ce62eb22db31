// Package bridge carries hook events from a one-shot `gwt hook <Event>`
// invocation into the long-running interactive application, per §6's "CLI
// surface" rule: emit over the message-bus bridge, falling back to a
// file-tail when the bridge is unavailable (no listener, e.g. the
// interactive app isn't running).
package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Event is one hook invocation forwarded to the running application.
type Event struct {
	Event      string          `json:"event"`
	Branch     string          `json:"branch,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// SocketPath returns the Unix domain socket the interactive app listens on
// for hook events, scoped per repo so multiple clones don't cross-wire.
func SocketPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".gwt", "bridge.sock")
}

// FallbackLogPath returns the append-only file hook events are queued to
// when no listener is reachable at SocketPath.
func FallbackLogPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".gwt", "hook-events.log")
}

const dialTimeout = 200 * time.Millisecond

// Send delivers ev to the running application's socket at repoRoot, falling
// back to appending ev to the fallback log when nothing is listening (the
// app isn't running, or is running in a different repo clone).
func Send(repoRoot string, ev Event) error {
	conn, err := net.DialTimeout("unix", SocketPath(repoRoot), dialTimeout)
	if err == nil {
		defer conn.Close()
		enc := json.NewEncoder(conn)
		return enc.Encode(ev)
	}
	return appendFallback(repoRoot, ev)
}

func appendFallback(repoRoot string, ev Event) error {
	path := FallbackLogPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding hook event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Server listens on SocketPath(repoRoot) and delivers decoded events on its
// Events channel. It also drains FallbackLogPath once at startup, so events
// queued while the app wasn't running aren't lost.
type Server struct {
	repoRoot string
	listener net.Listener
	events   chan Event
	done     chan struct{}
}

// Listen starts a Server for repoRoot. The caller must call Close when done.
func Listen(repoRoot string) (*Server, error) {
	sockPath := SocketPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(sockPath), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(sockPath), err)
	}
	os.Remove(sockPath) // clear a stale socket left by a crashed previous run

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", sockPath, err)
	}

	s := &Server{
		repoRoot: repoRoot,
		listener: ln,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}
	go s.acceptLoop()
	s.drainFallback()
	return s, nil
}

// Events returns the channel new hook events arrive on.
func (s *Server) Events() <-chan Event {
	return s.events
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	var ev Event
	if err := json.NewDecoder(conn).Decode(&ev); err != nil {
		return
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// drainFallback reads every queued line from FallbackLogPath and pushes it
// onto Events, then truncates the file so it isn't replayed next time.
func (s *Server) drainFallback() {
	path := FallbackLogPath(s.repoRoot)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return
	}
	defer lock.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return
	}
	scanner := bufio.NewScanner(f)
	var queued []Event
	for scanner.Scan() {
		var ev Event
		if json.Unmarshal(scanner.Bytes(), &ev) == nil {
			queued = append(queued, ev)
		}
	}
	f.Close()

	for _, ev := range queued {
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
	os.Truncate(path, 0)
}

// Close stops accepting connections and releases the socket file.
func (s *Server) Close() error {
	close(s.done)
	err := s.listener.Close()
	os.Remove(SocketPath(s.repoRoot))
	return err
}
