package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/host/remote"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/scheduler"
)

// Session is one connected browser. Rendering, event dispatch and
// flushing happen on the session's run goroutine only; the read loop
// just decodes frames.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	host     *remote.Host
	sched    *scheduler.Scheduler
	renderer *renderer.Renderer
	app      *renderer.App

	events chan *protocol.Event
	done   chan struct{}
	once   sync.Once

	writeMu sync.Mutex
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := newSessionID()
	logger := s.logger.With("session", id)
	sess := &Session{
		id:     id,
		server: s,
		conn:   conn,
		logger: logger,
		host:   remote.New(remote.WithMaxPayload(s.config.MaxPayload), remote.WithLogger(logger)),
		sched: scheduler.New(
			scheduler.WithObserver(s.metrics.observeFlush),
			scheduler.WithLogger(logger),
		),
		events: make(chan *protocol.Event, s.config.EventQueue),
		done:   make(chan struct{}),
	}
	sess.renderer = renderer.New(sess.host, renderer.WithScheduler(sess.sched), renderer.WithLogger(logger))
	return sess
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("s%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// ID returns the session id.
func (sess *Session) ID() string {
	return sess.id
}

// Close ends the session. It is safe to call more than once.
func (sess *Session) Close() {
	sess.once.Do(func() {
		close(sess.done)
		sess.conn.Close()
	})
}

func (sess *Session) run(ctx context.Context) {
	defer sess.Close()

	if err := sess.mount(ctx); err != nil {
		sess.logger.Error("mount failed", "error", err)
		sess.sendError(errors.New("L002").Wrap(err).WithDetail(err.Error()), true)
		return
	}
	defer sess.unmount()

	go sess.readLoop()
	sess.eventLoop(ctx)
}

func (sess *Session) mount(ctx context.Context) (err error) {
	_, span := sess.server.tracer.Start(ctx, "reactor.mount",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("reactor.session", sess.id),
			attribute.String("reactor.component", sess.server.root.Name),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	sess.app = sess.renderer.CreateApp(sess.server.root, sess.server.props)
	for k, v := range sess.server.provides {
		sess.app.Provide(k, v)
	}

	err = sess.guard(func() error {
		var mountErr error
		sess.sched.RunTask(func() {
			mountErr = sess.app.Mount(sess.host.Root())
		})
		return mountErr
	})
	if err != nil {
		return err
	}
	return sess.flush()
}

func (sess *Session) unmount() {
	if err := sess.guard(func() error {
		sess.sched.RunTask(sess.app.Unmount)
		return nil
	}); err != nil {
		sess.logger.Warn("unmount failed", "error", err)
	}
}

// guard runs fn and turns a panic into an error.
func (sess *Session) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (sess *Session) eventLoop(ctx context.Context) {
	ping := time.NewTicker(sess.server.config.ReadTimeout / 2)
	defer ping.Stop()

	for {
		select {
		case <-sess.done:
			return
		case ev := <-sess.events:
			sess.handleEvent(ctx, ev)
		case <-ping.C:
			sess.writeMu.Lock()
			err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(sess.server.config.WriteTimeout))
			sess.writeMu.Unlock()
			if err != nil {
				sess.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (sess *Session) handleEvent(ctx context.Context, ev *protocol.Event) {
	start := time.Now()
	_, span := sess.server.tracer.Start(ctx, "reactor.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("reactor.session", sess.id),
			attribute.String("reactor.event", ev.Name),
			attribute.Int64("reactor.node", int64(ev.ID)),
		),
	)
	defer span.End()

	status := statusOK
	var handled bool
	err := sess.guard(func() error {
		sess.sched.RunTask(func() {
			handled = sess.host.Dispatch(ev.ID, ev.Name, ev.Detail)
		})
		return nil
	})
	switch {
	case err != nil:
		status = statusPanic
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sess.logger.Error("event handler failed", "event", ev.Name, "node", ev.ID, "error", err)
		sess.sendError(errors.New("L001").Wrap(err).WithDetailf("%s on #%d: %v", ev.Name, ev.ID, err), false)
	case !handled:
		status = statusUnhandled
		span.SetStatus(codes.Ok, "unhandled")
	default:
		span.SetStatus(codes.Ok, "")
	}
	sess.server.metrics.eventsTotal.WithLabelValues(ev.Name, status).Inc()

	if err := sess.flush(); err != nil {
		sess.logger.Debug("flush failed", "error", err)
		sess.Close()
		return
	}
	sess.server.metrics.eventDuration.Observe(time.Since(start).Seconds())
}

// flush sends every buffered host op.
func (sess *Session) flush() error {
	ops := sess.host.Pending()
	frames := sess.host.Flush()
	for _, f := range frames {
		if err := sess.write(f); err != nil {
			return err
		}
	}
	sess.server.metrics.framesSent.Add(float64(len(frames)))
	sess.server.metrics.opsSent.Add(float64(ops))
	return nil
}

func (sess *Session) write(f *protocol.Frame) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.SetWriteDeadline(time.Now().Add(sess.server.config.WriteTimeout)); err != nil {
		return err
	}
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
		sess.server.metrics.wsErrors.WithLabelValues("write").Inc()
		return err
	}
	return nil
}

func (sess *Session) sendError(e *errors.Error, fatal bool) {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	payload := protocol.EncodeErrorMessage(&protocol.ErrorMessage{
		Code:    e.Code,
		Message: msg,
		Fatal:   fatal,
	})
	if err := sess.write(protocol.NewFrame(protocol.FrameError, payload)); err != nil {
		sess.logger.Debug("error frame not sent", "error", err)
	}
}

// readLoop decodes client frames and queues their events until the
// connection fails or the session closes.
func (sess *Session) readLoop() {
	defer sess.Close()

	cfg := sess.server.config
	sess.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		msgType, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.server.metrics.wsErrors.WithLabelValues("read").Inc()
				sess.logger.Debug("read failed", "error", err)
			}
			return
		}
		_ = sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		if msgType != websocket.BinaryMessage {
			sess.sendError(errors.New("P001").WithDetail("expected a binary message"), false)
			continue
		}
		ev, perr := decodeEventFrame(data)
		if perr != nil {
			sess.server.metrics.wsErrors.WithLabelValues("decode").Inc()
			sess.sendError(perr, false)
			continue
		}

		select {
		case sess.events <- ev:
		case <-sess.done:
			return
		}
	}
}

func decodeEventFrame(data []byte) (*protocol.Event, *errors.Error) {
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return nil, protocolError(err)
	}
	if frame.Type != protocol.FrameEvent {
		return nil, errors.New("P001").WithDetailf("unexpected %s frame", frame.Type)
	}
	ev, err := protocol.DecodeEvent(frame.Payload)
	if err != nil {
		return nil, protocolError(err)
	}
	return ev, nil
}

func protocolError(err error) *errors.Error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	return errors.New("P001").Wrap(err).WithDetail(err.Error())
}
