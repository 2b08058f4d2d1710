package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"quizis-session-service/internal/app"
	"quizis-session-service/internal/domain"
)

// WSHandler exposes the session controller to the presentation layer over a
// websocket: start/resume/answer/end requests in, question/tick/result frames
// out. One connection serves one user's quiz at a time.
type WSHandler struct {
	controller  *app.SessionController
	upgrader    websocket.Upgrader
	revealDelay time.Duration
}

func NewWSHandler(controller *app.SessionController, revealDelay time.Duration) *WSHandler {
	return &WSHandler{
		controller:  controller,
		revealDelay: revealDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Category     domain.Category `json:"category"`
	Amount       int             `json:"amount"`
	Difficulty   string          `json:"difficulty"`
	TimerMinutes int             `json:"timerMinutes"`
}

type answerPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      string `json:"selected"`
}

type questionFrame struct {
	app.QuestionView
	Remaining int `json:"remaining"`
}

type tickFrame struct {
	Remaining int `json:"remaining"`
}

type resultFrame struct {
	domain.ResultSummary
	Percentage int `json:"percentage"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the quiz conversation. The read loop
// is the only reader; a writer goroutine serializes outbound frames; a ticker
// goroutine drives the one-second countdown while a session is active. All
// background work stops when closeSignals closes, so nothing mutates the
// session after teardown.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	emitErr := func(err error) {
		emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	// Advisory resume notice on arrival; also tells the client to disable
	// starting a second quiz.
	if notice, err := h.controller.CheckResume(r.Context(), userID); err == nil && notice != nil {
		emit(outboundMessage[any]{Type: "notice", Payload: notice})
	}

	var stopTicker chan struct{}
	startTicker := func() {
		if stopTicker != nil {
			close(stopTicker)
		}
		stopTicker = make(chan struct{})
		go h.runTicker(userID, emit, stopTicker, closeSignals)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitErr(errors.New("invalid start payload"))
				continue
			}
			session, err := h.controller.Start(r.Context(), userID, payload.Category, domain.QuizConfig{
				Amount:       payload.Amount,
				Difficulty:   payload.Difficulty,
				TimerMinutes: payload.TimerMinutes,
			})
			if err != nil {
				emitErr(err)
				continue
			}
			h.emitQuestion(emit, session, session.TimerBudget)
			startTicker()

		case "resume":
			session, remaining, err := h.controller.Resume(r.Context(), userID)
			if err != nil {
				emitErr(err)
				continue
			}
			h.emitQuestion(emit, session, remaining)
			startTicker()

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitErr(errors.New("invalid answer payload"))
				continue
			}
			// The reveal pause is presentation-only: the transition applies
			// after the delay unless the connection is torn down first, in
			// which case it must not apply at all.
			go func() {
				select {
				case <-time.After(h.revealDelay):
				case <-closeSignals:
					return
				}
				outcome, err := h.controller.SubmitAnswer(r.Context(), userID, payload.QuestionIndex, payload.Selected)
				if err != nil {
					emitErr(err)
					return
				}
				switch {
				case outcome.Result != nil:
					h.emitResult(emit, *outcome.Result)
				case outcome.Next != nil:
					h.emitQuestion(emit, *outcome.Next, outcome.Next.Remaining(time.Now()))
				}
			}()

		case "end":
			result, err := h.controller.ForceEnd(r.Context(), userID)
			if err != nil {
				emitErr(err)
				continue
			}
			h.emitResult(emit, result)

		case "result":
			result, err := h.controller.ConsumeResult(r.Context(), userID)
			if err != nil {
				emitErr(err)
				continue
			}
			h.emitResult(emit, result)

		default:
			emitErr(errors.New("unsupported message type"))
		}
	}

	close(closeSignals)
	<-writerDone
}

// runTicker drives the countdown once per second. The controller performs the
// expiry transition itself, so a tick landing after termination is a no-op
// that just ends the loop.
func (h *WSHandler) runTicker(userID string, emit func(outboundMessage[any]), stop, closeSignals chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			remaining, result, err := h.controller.Tick(context.Background(), userID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return
			}
			if err != nil {
				log.Printf("tick for %s: %v", userID, err)
				return
			}
			if result != nil {
				h.emitResult(emit, *result)
				return
			}
			emit(outboundMessage[any]{Type: "tick", Payload: tickFrame{Remaining: remaining}})
		case <-stop:
			return
		case <-closeSignals:
			return
		}
	}
}

func (h *WSHandler) emitQuestion(emit func(outboundMessage[any]), session domain.Session, remaining int) {
	view, ok := h.controller.PresentQuestion(session)
	if !ok {
		return
	}
	emit(outboundMessage[any]{Type: "question", Payload: questionFrame{QuestionView: view, Remaining: remaining}})
}

func (h *WSHandler) emitResult(emit func(outboundMessage[any]), result domain.ResultSummary) {
	emit(outboundMessage[any]{Type: "result", Payload: resultFrame{ResultSummary: result, Percentage: result.Percentage()}})
}
