package session

import (
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/app/frame"
	"github.com/osa030/bytebeats/internal/app/playback"
	"github.com/osa030/bytebeats/internal/app/reconnect"
	"github.com/osa030/bytebeats/internal/app/stream"
	"github.com/osa030/bytebeats/internal/domain/catalog"
	"github.com/osa030/bytebeats/internal/infra/transport"
)

// transportHandler turns connector callbacks into loop events.
type transportHandler struct {
	m *Manager
}

func (h *transportHandler) OnOpen(conn uint64) {
	h.m.mailbox.push(Event{Kind: EventTransportOpen, Conn: conn})
}

func (h *transportHandler) OnMessage(conn uint64, p transport.Payload) {
	h.m.mailbox.push(Event{Kind: EventTransportMessage, Conn: conn, Payload: p})
}

func (h *transportHandler) OnClose(conn uint64, code int, reason string) {
	h.m.mailbox.push(Event{Kind: EventTransportClose, Conn: conn, Code: code, Reason: reason})
}

func (h *transportHandler) OnError(conn uint64, detail string) {
	h.m.mailbox.push(Event{Kind: EventTransportError, Conn: conn, Detail: detail})
}

func (m *Manager) handleTransport(e Event) {
	switch e.Kind {
	case EventTransportOpen:
		m.onOpen()
	case EventTransportMessage:
		m.handleFrame(frame.Classify(e.Payload))
	case EventTransportError:
		zlog.Warn().Msgf("session: transport error: conn=%d detail=%s", e.Conn, e.Detail)
		m.session.Fail(e.Detail)
	case EventTransportClose:
		zlog.Info().Msgf("session: connection closed: conn=%d code=%d reason=%s", e.Conn, e.Code, e.Reason)
		m.onClosed()
		m.scheduleReconnect()
	}
}

func (m *Manager) onOpen() {
	m.session.MarkConnected()
	m.policy.Reset()
	m.awaitingAuth = false
	zlog.Info().Msgf("session: connected: conn=%d", m.connID)

	m.sendPendingLogin()
}

// onClosed applies a lost connection: auth and the active stream do not survive it.
// The catalog is kept for display.
func (m *Manager) onClosed() {
	if m.reassembler.Active() {
		zlog.Warn().Msgf("session: discarding stream interrupted by disconnect: track=%s", m.reassembler.Snapshot().Track)
	}
	m.session.MarkDisconnected()
	m.awaitingAuth = false
	m.reassembler.Reset()
	m.playback.CancelLoading()
}

func (m *Manager) scheduleReconnect() {
	decision := m.policy.Schedule(func() {
		m.mailbox.push(Event{Kind: EventReconnectDue})
	})
	switch decision {
	case reconnect.Exhausted:
		m.session.Fail("reconnect attempts exhausted")
	case reconnect.Disabled:
		zlog.Info().Msg("session: automatic reconnect disabled")
	}
}

func (m *Manager) sendPendingLogin() {
	if m.pending == nil || !m.session.IsConnected() {
		return
	}
	p := m.pending
	if !m.transport.Send(transport.Text(p.line)) {
		return
	}
	m.pending = nil
	m.awaitingAuth = true
	m.session.BeginAuth(p.username)
	zlog.Info().Msgf("session: credentials sent: username=%s", p.username)
}

func (m *Manager) handleFrame(f frame.Frame) {
	switch f.Kind {
	case frame.KindFragment:
		m.reassembler.Append(f.Data)
	case frame.KindEnvelope:
		m.handleEnvelope(f.Envelope)
	case frame.KindMalformed:
		// Already logged by the classifier.
	}
}

func (m *Manager) handleEnvelope(env frame.Envelope) {
	zlog.Debug().Msgf("session: envelope: type=%s", env.Type)

	switch env.Type {
	case frame.TypeAuthRequired:
		if m.awaitingAuth {
			// Greeting crossed our submission on the wire.
			zlog.Debug().Msg("session: auth challenge while credentials are pending a verdict")
			return
		}
		m.session.Deauthenticate()
		m.sendPendingLogin()

	case frame.TypeAuthSuccess:
		m.awaitingAuth = false
		m.session.Authenticate()
		m.replaceCatalog(env.Songs())
		zlog.Info().Msgf("session: authenticated: username=%s tracks=%d", m.session.Username, m.catalog.Len())

	case frame.TypeAuthFailed:
		m.awaitingAuth = false
		m.session.Deauthenticate()
		msg := "authentication failed"
		if env.Message() != "" {
			msg = fmt.Sprintf("%s: %s", msg, env.Message())
		}
		m.session.Fail(msg)
		zlog.Warn().Msgf("session: %s", msg)

	case frame.TypeSongList:
		m.replaceCatalog(env.Songs())

	case frame.TypeSongPlaying:
		m.reassembler.Start(env.Name())
		if m.current == "" {
			m.current = env.Name()
		}

	case frame.TypeSongMetadata:
		m.reassembler.SetExpectedSize(env.Name(), env.Metadata.Size)

	case frame.TypeSongEnded:
		m.onStreamEnded()

	case frame.TypeStreamError:
		err := m.reassembler.Abort(env.Message())
		m.playback.CancelLoading()
		m.session.Fail(err.Error())

	default:
		zlog.Debug().Msgf("session: ignoring envelope: type=%s", env.Type)
	}
}

func (m *Manager) replaceCatalog(names []string) {
	m.catalog = catalog.New(names)
	zlog.Debug().Msgf("session: catalog replaced: tracks=%d", m.catalog.Len())
}

func (m *Manager) onStreamEnded() {
	asset, err := m.reassembler.End()
	if err != nil {
		if errors.Is(err, stream.ErrNoActiveStream) {
			zlog.Warn().Msg("session: stream end without an active stream")
			return
		}
		m.playback.CancelLoading()
		m.session.Fail(err.Error())
		zlog.Warn().Msgf("session: stream rejected: %v", err)
		return
	}

	if err := m.playback.Load(asset); err != nil {
		m.session.Fail(err.Error())
		return
	}
	if err := m.playback.Play(); err != nil {
		// NeedsManualPlay is visible in the playback snapshot.
		m.session.Fail(err.Error())
	}
}

func (m *Manager) handlePlayback(e playback.Event) {
	switch e.Type {
	case playback.EventTrackEnded:
		// A newer request owns the current track; the ended asset must not override it.
		if e.State.Loaded.Name != m.current || m.playback.Snapshot().Loading {
			zlog.Debug().Msgf("session: ignoring end of superseded track: ended=%s current=%s", e.State.Loaded.Name, m.current)
			return
		}
		m.next()
	case playback.EventMediaError:
		if e.Err != nil {
			m.session.Fail(e.Err.Error())
		}
	}
}
