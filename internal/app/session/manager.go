// Package session provides the client session manager.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/app/frame"
	"github.com/osa030/bytebeats/internal/app/guard"
	"github.com/osa030/bytebeats/internal/app/notification"
	"github.com/osa030/bytebeats/internal/app/playback"
	"github.com/osa030/bytebeats/internal/app/reconnect"
	"github.com/osa030/bytebeats/internal/app/session/state"
	"github.com/osa030/bytebeats/internal/app/stream"
	"github.com/osa030/bytebeats/internal/domain/catalog"
	"github.com/osa030/bytebeats/internal/domain/listener"
	"github.com/osa030/bytebeats/internal/infra/transport"
)

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrNoTransport    = errors.New("no transport attached")
	ErrAlreadyRunning = errors.New("session loop is already running")
)

// Transport is the connection the session drives.
// *transport.Connector satisfies it.
type Transport interface {
	Connect(ctx context.Context, ep transport.Endpoint) uint64
	Disconnect()
	Send(p transport.Payload) bool
	Connected() bool
}

// Options holds session configuration.
type Options struct {
	Endpoint  transport.Endpoint
	Reconnect reconnect.Config
	Guards    []string // Guard names in evaluation order; nil uses guard.DefaultOrder
}

// pendingLogin holds credentials submitted before a connection was available.
type pendingLogin struct {
	username string
	line     string
}

// Manager owns the client session. All state changes happen on its loop.
type Manager struct {
	// Components
	transport    Transport
	playback     *playback.Controller
	reassembler  *stream.Reassembler
	policy       *reconnect.Policy
	guards       *guard.Chain
	notification *notification.Manager
	stateMgr     *state.Manager

	// Loop-owned state
	opts         Options
	session      *listener.Session
	catalog      catalog.Catalog
	current      string
	connID       uint64
	pending      *pendingLogin
	awaitingAuth bool // Credentials sent on the current connection, no verdict yet
	closed       bool

	// Loop
	mailbox   *mailbox
	running   atomic.Bool
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager creates a session manager around a playback controller.
// A transport must be attached with SetTransport before commands that dial.
func NewManager(opts Options, pb *playback.Controller) (*Manager, error) {
	names := opts.Guards
	if names == nil {
		names = guard.DefaultOrder
	}
	guards, err := guard.NewDefaultChain(names...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build guard chain")
	}

	sessionID := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		playback:     pb,
		reassembler:  stream.NewReassembler(),
		policy:       reconnect.New(opts.Reconnect),
		guards:       guards,
		notification: notification.NewManager(),
		stateMgr:     state.New(sessionID),
		opts:         opts,
		session:      listener.NewSession(sessionID),
		mailbox:      newMailbox(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	m.publish()
	return m, nil
}

// SetTransport attaches the transport. Call before Run.
func (m *Manager) SetTransport(t Transport) {
	m.transport = t
}

// Handler returns the transport callbacks that feed this session.
func (m *Manager) Handler() transport.Handler {
	return &transportHandler{m: m}
}

// Notifications returns the status broadcaster.
func (m *Manager) Notifications() *notification.Manager {
	return m.notification
}

// Status returns the latest published status. Safe for any goroutine.
func (m *Manager) Status() state.Status {
	return m.stateMgr.Snapshot()
}

// Done is closed when Run returns.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Run drains the mailbox until the session is closed or ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(m.done)

	go m.forwardPlayback()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-m.mailbox.ready():
			for _, e := range m.mailbox.drain() {
				m.Handle(e)
			}
			if m.closed {
				return nil
			}
		}
	}
}

// forwardPlayback moves controller events into the mailbox.
func (m *Manager) forwardPlayback() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: playback forwarder panicked: %v", r)
		}
	}()

	for {
		select {
		case <-m.ctx.Done():
			return
		case e, ok := <-m.playback.Events():
			if !ok {
				return
			}
			m.mailbox.push(Event{Kind: EventPlayback, Playback: e})
		}
	}
}

// Login submits credentials. Validation errors are returned immediately;
// the verdict arrives as a status update.
func (m *Manager) Login(username, password string) error {
	line, err := frame.Credentials(username, password)
	if err != nil {
		return err
	}
	return m.command(Command{Kind: CommandLogin, Username: username, Line: line})
}

// Play requests a track by name.
func (m *Manager) Play(name string) error {
	return m.command(Command{Kind: CommandPlay, Name: name})
}

// Pause pauses playback.
func (m *Manager) Pause() error {
	return m.command(Command{Kind: CommandPause})
}

// Resume resumes playback.
func (m *Manager) Resume() error {
	return m.command(Command{Kind: CommandResume})
}

// TogglePause pauses when playing and resumes otherwise.
func (m *Manager) TogglePause() error {
	return m.command(Command{Kind: CommandTogglePause})
}

// SetMuted sets the mute flag.
func (m *Manager) SetMuted(muted bool) error {
	return m.command(Command{Kind: CommandSetMuted, Muted: muted})
}

// ToggleMute flips the mute flag.
func (m *Manager) ToggleMute() error {
	return m.command(Command{Kind: CommandToggleMute})
}

// Next requests the catalog successor of the current track.
func (m *Manager) Next() error {
	return m.command(Command{Kind: CommandNext})
}

// Connect dials the server, cancelling any scheduled reconnect.
func (m *Manager) Connect() error {
	return m.command(Command{Kind: CommandConnect})
}

// Disconnect closes the connection without scheduling a reconnect.
func (m *Manager) Disconnect() error {
	return m.command(Command{Kind: CommandDisconnect})
}

// Close shuts the session down and waits for the loop to exit.
// Without a running loop the shutdown happens on the caller's goroutine.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		if m.running.Load() && m.mailbox.push(Event{Kind: EventCommand, Command: Command{Kind: CommandClose}}) {
			<-m.done
			return
		}
		m.shutdown()
	})
	return nil
}

func (m *Manager) command(c Command) error {
	if !m.mailbox.push(Event{Kind: EventCommand, Command: c}) {
		return ErrSessionClosed
	}
	return nil
}

// Handle applies one event. It must only be called from the loop goroutine,
// or directly when no loop is running.
func (m *Manager) Handle(e Event) {
	if m.closed {
		return
	}

	switch e.Kind {
	case EventTransportOpen, EventTransportMessage, EventTransportClose, EventTransportError:
		if e.Conn != m.connID {
			zlog.Debug().Msgf("session: dropping event from stale connection: kind=%s conn=%d current=%d", e.Kind, e.Conn, m.connID)
			return
		}
		m.handleTransport(e)
	case EventPlayback:
		m.handlePlayback(e.Playback)
	case EventCommand:
		m.handleCommand(e.Command)
	case EventReconnectDue:
		if m.session.Conn == listener.Disconnected {
			m.connect()
		}
	}

	m.publish()
}

func (m *Manager) handleCommand(c Command) {
	zlog.Debug().Msgf("session: command: kind=%s", c.Kind)

	switch c.Kind {
	case CommandLogin:
		m.login(c.Username, c.Line)
	case CommandPlay:
		m.play(c.Name)
	case CommandPause:
		m.pause()
	case CommandResume:
		m.resume()
	case CommandTogglePause:
		if m.playback.Snapshot().Playing {
			m.pause()
		} else {
			m.resume()
		}
	case CommandSetMuted:
		m.playback.SetMuted(c.Muted)
	case CommandToggleMute:
		m.playback.ToggleMute()
	case CommandNext:
		m.next()
	case CommandConnect:
		m.policy.Cancel()
		m.connect()
	case CommandDisconnect:
		m.disconnect()
	case CommandClose:
		m.shutdown()
	}
}

func (m *Manager) login(username, line string) {
	m.session.BeginAuth(username)

	if m.session.IsConnected() && m.transport.Send(transport.Text(line)) {
		m.pending = nil
		m.awaitingAuth = true
		zlog.Info().Msgf("session: credentials sent: username=%s", username)
		return
	}

	// Sent once the connection opens.
	m.pending = &pendingLogin{username: username, line: line}
	if m.session.Conn == listener.Disconnected {
		m.policy.Cancel()
		m.connect()
	}
}

func (m *Manager) play(name string) {
	if !m.check(guard.Request{Command: guard.CommandPlay, Track: name}) {
		return
	}

	m.playback.Prepare()
	m.current = name
	if !m.transport.Send(transport.Text(frame.PlaySong(name))) {
		m.playback.CancelLoading()
		m.session.Fail("not connected")
		return
	}
	zlog.Info().Msgf("session: requested track: name=%s", name)
}

// pause is idempotent: only a state change is reported to the server.
func (m *Manager) pause() {
	if !m.playback.Pause() {
		return
	}
	m.sendControl(frame.Pause())
}

func (m *Manager) resume() {
	snap := m.playback.Snapshot()
	if snap.Playing {
		return
	}
	if err := m.playback.Play(); err != nil {
		if errors.Is(err, playback.ErrNoTrack) {
			zlog.Debug().Msg("session: resume without a loaded track")
			return
		}
		m.session.Fail(err.Error())
		return
	}
	m.sendControl(frame.Resume())
}

func (m *Manager) next() {
	req := guard.Request{Command: guard.CommandNext}
	result := m.guards.Execute(req, m.subject())
	if !result.Accepted {
		// Next on a trivial catalog or a stale track is a no-op, not an error.
		zlog.Debug().Msgf("session: next skipped: code=%s", result.Code)
		return
	}

	t, ok := m.playback.Next(m.catalog, m.current)
	if !ok {
		return
	}
	m.play(t.Name)
}

func (m *Manager) connect() {
	if m.transport == nil {
		m.session.Fail(ErrNoTransport.Error())
		return
	}
	if m.session.Conn != listener.Disconnected {
		// The connector tears the old connection down without a close callback.
		m.onClosed()
	}
	m.session.BeginConnect()
	m.connID = m.transport.Connect(m.ctx, m.opts.Endpoint)
	zlog.Info().Msgf("session: connecting: url=%s conn=%d attempt=%d", m.opts.Endpoint.URL(), m.connID, m.session.Attempts)
}

func (m *Manager) disconnect() {
	m.policy.Cancel()
	if m.transport != nil {
		m.transport.Disconnect()
	}
	if m.session.Conn != listener.Disconnected {
		m.onClosed()
	}
	m.connID = 0
	zlog.Info().Msg("session: disconnected by user")
}

func (m *Manager) shutdown() {
	if m.closed {
		return
	}
	m.policy.Cancel()
	if m.transport != nil {
		m.transport.Disconnect()
	}
	if m.session.Conn != listener.Disconnected {
		m.onClosed()
	}
	m.reassembler.Reset()
	if err := m.playback.Close(); err != nil {
		zlog.Warn().Msgf("session: failed to close playback: %v", err)
	}

	m.closed = true
	m.mailbox.close()
	m.cancel()
	m.publish()
	m.notification.Close()
	zlog.Info().Msgf("session: closed: session_id=%s", m.session.ID)
}

// check runs the guard chain and records a rejection.
func (m *Manager) check(req guard.Request) bool {
	result := m.guards.Execute(req, m.subject())
	if result.Accepted {
		return true
	}
	zlog.Warn().Msgf("session: command rejected: command=%s code=%s", req.Command, result.Code)
	m.session.Fail(result.Code)
	return false
}

func (m *Manager) subject() guard.Subject {
	return guard.Subject{
		Session: m.session,
		Catalog: m.catalog,
		Current: m.current,
	}
}

func (m *Manager) sendControl(line string) {
	if m.transport == nil || !m.transport.Send(transport.Text(line)) {
		zlog.Debug().Msgf("session: control not sent, offline: %s", line)
	}
}

// publish stores the current status and broadcasts it when it changed.
func (m *Manager) publish() {
	status := state.Status{
		Phase:    state.DerivePhase(*m.session, m.policy.Pending(), m.closed),
		Session:  *m.session,
		Catalog:  m.catalog.Names(),
		Current:  m.current,
		Playback: m.playback.Snapshot(),
		Stream:   m.reassembler.Snapshot(),
		Dropped:  m.reassembler.Dropped(),
	}
	if m.stateMgr.Store(status) {
		m.notification.Broadcast(status)
	}
}
