package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/exam"
	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
	ws "github.com/gmprep/simulado-backend/internal/websocket"
)

const (
	gradingRetries    = 10
	gradingRetryDelay = 200 * time.Millisecond
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// EventSource streams the events published for one simulation, such as a
// grade computed by another instance. The returned func releases it.
type EventSource interface {
	Events(ctx context.Context, simulationID string) (<-chan []byte, func() error)
}

// WSHandler streams a running simulation: countdown ticks, autosave and
// grading over one connection.
type WSHandler struct {
	simulationService *service.SimulationService
	events            EventSource
	tick              time.Duration
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. events may be nil, in which case
// only grades produced on this connection are delivered.
func NewWSHandler(simulationService *service.SimulationService, events EventSource, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		simulationService: simulationService,
		events:            events,
		tick:              exam.DefaultTick,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// stream is the state of one connection.
type stream struct {
	conn   *ws.Conn
	id     string
	graded sync.Once
}

// sendGraded delivers the final result at most once per connection.
func (s *stream) sendGraded(out *model.SimulationOutcome) {
	s.graded.Do(func() {
		_ = s.conn.WriteTyped(ws.GradedResponse{Event: ws.EventGraded, Result: out})
	})
}

// SimulationStream godoc
// WS /ws/v1/simulations/:id/stream?token=
// Upgrades to WebSocket for ticks, autosave and grading.
func (h *WSHandler) SimulationStream(c *gin.Context) {
	id := c.Param("id")
	sess, err := h.simulationService.Session(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()

	ctx, cancel := context.WithCancel(identity.WithUser(context.Background(), sess.UserID))
	defer cancel()

	st := &stream{conn: ws.Wrap(raw), id: id}
	wsLog := h.log.With().Str("simulation_id", id).Str("user_id", sess.UserID).Logger()
	wsLog.Info().Msg("Client connected")

	state, err := h.simulationService.State(ctx, id)
	if err != nil {
		_ = st.conn.WriteError(string(errorCode(err)), response.GetMessage(errorCode(err)))
		return
	}
	if state.Finished {
		if out, err := h.simulationService.Submit(ctx, id); err == nil {
			st.sendGraded(out)
		}
		return
	}

	if h.events != nil {
		events, release := h.events.Events(ctx, id)
		defer release()
		go h.relay(st, events)
	}

	_ = st.conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, Remaining: int(state.RemainingTime)})
	countdown := exam.StartCountdown(sess.Deadline,
		func() { h.submit(ctx, st, wsLog) },
		exam.WithTick(h.tick),
		exam.WithOnTick(func(remaining time.Duration) {
			_ = st.conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, Remaining: int(remaining.Seconds())})
		}),
	)
	defer countdown.Stop()

	for {
		var msg ws.Request
		if err := st.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(ctx, st, &msg)
		case ws.ActionSubmit:
			countdown.Stop()
			h.submit(ctx, st, wsLog)
		case ws.ActionPing:
			_ = st.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = st.conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleAutosave(ctx context.Context, st *stream, msg *ws.Request) {
	if msg.Index == nil || msg.Answer == "" {
		_ = st.conn.WriteError(string(response.ErrInvalidPayload), "index and answer are required")
		return
	}
	if !validator.IsOption(msg.Answer) {
		_ = st.conn.WriteError(string(response.ErrInvalidPayload), "answer must be one of a, b, c, d, e")
		return
	}

	if err := h.simulationService.SaveAnswer(ctx, st.id, *msg.Index, msg.Answer); err != nil {
		code := errorCode(err)
		_ = st.conn.WriteError(string(code), response.GetMessage(code))
		if errors.Is(err, service.ErrSimulationFinished) {
			if out, err := h.simulationService.Submit(ctx, st.id); err == nil {
				st.sendGraded(out)
			}
		}
		return
	}
	_ = st.conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, Index: *msg.Index})
}

// submit grades the simulation; the service makes repeated calls return the
// stored outcome.
func (h *WSHandler) submit(ctx context.Context, st *stream, wsLog zerolog.Logger) {
	out, err := h.simulationService.Submit(ctx, st.id)
	// Another caller holds the submission; its result lands shortly.
	for attempt := 0; errors.Is(err, service.ErrSimulationGrading) && attempt < gradingRetries; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(gradingRetryDelay):
		}
		out, err = h.simulationService.Submit(ctx, st.id)
	}
	if err != nil {
		if !errors.Is(err, service.ErrSimulationGrading) {
			wsLog.Error().Err(err).Msg("Submit failed")
		}
		code := errorCode(err)
		_ = st.conn.WriteError(string(code), response.GetMessage(code))
		return
	}
	st.sendGraded(out)
}

// relay forwards graded events produced elsewhere, e.g. by the deadline timer.
func (h *WSHandler) relay(st *stream, events <-chan []byte) {
	for payload := range events {
		var ev ws.GradedResponse
		if err := json.Unmarshal(payload, &ev); err != nil || ev.Event != ws.EventGraded || ev.Result == nil {
			continue
		}
		st.sendGraded(ev.Result)
	}
}
