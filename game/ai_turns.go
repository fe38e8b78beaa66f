package game

import (
	"log/slog"
	"time"
)

// maybeScheduleAI arms the AI decision timer when the current participant is
// an AI. The decision is taken against the current snapshot; if the turn has
// moved on by the time the delay elapses, handleRequest drops it as stale.
// Must run on the match goroutine.
func (m *Match) maybeScheduleAI() {
	m.cancelAITimer()
	if m.decider == nil || m.Status != StatusActive {
		return
	}
	p := m.Participants[m.CurrentParticipant]
	if !p.IsAI {
		return
	}

	action, delay := m.decider.Decide(m.Snapshot(), m.LegalActions(), p.AIProfile)
	slog.Debug("AI decision scheduled",
		"tag", "game", "match", m.ID, "participant", p.Name,
		"action", action.Kind.String(), "delay", delay)

	m.aiTimerCancel = make(chan struct{})
	cancel := m.aiTimerCancel
	participantID := p.ID
	go func() {
		select {
		case <-time.After(delay):
			select {
			case m.Requests <- Request{Kind: ReqAIAction, ParticipantID: participantID, Action: action}:
			case <-m.Done:
			}
		case <-cancel:
		}
	}()
}

func (m *Match) cancelAITimer() {
	if m.aiTimerCancel != nil {
		close(m.aiTimerCancel)
		m.aiTimerCancel = nil
	}
}
