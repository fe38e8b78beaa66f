package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/config"
	"dungeon-legends-server/deck"
	"dungeon-legends-server/gameerrors"
)

// MatchStatus is the state machine state: active accepts actions, completed is
// terminal and read-only. "Waiting to start" lives outside this machine.
type MatchStatus string

const (
	StatusActive    MatchStatus = "active"
	StatusCompleted MatchStatus = "completed"
)

// GameMode decides how victory is reported.
type GameMode string

const (
	ModeCooperative GameMode = "cooperative"
	ModeCompetitive GameMode = "competitive"
)

// ActionKind enumerates the closed set of participant actions. Adding a kind
// is a compile-time addition here plus a case in the dispatch switch.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionDefend
	ActionSpecial
	ActionPass
	ActionPlayCard
	ActionEventChoice
	ActionChallenge
)

// String returns the wire name of an ActionKind.
func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionSpecial:
		return "special"
	case ActionPass:
		return "pass"
	case ActionPlayCard:
		return "playCard"
	case ActionEventChoice:
		return "eventChoice"
	case ActionChallenge:
		return "challenge"
	default:
		return "unknown"
	}
}

// ParseActionKind maps a wire action name to its kind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "attack":
		return ActionAttack, true
	case "defend":
		return ActionDefend, true
	case "special":
		return ActionSpecial, true
	case "pass":
		return ActionPass, true
	case "playCard":
		return ActionPlayCard, true
	case "eventChoice":
		return ActionEventChoice, true
	case "challenge":
		return ActionChallenge, true
	default:
		return 0, false
	}
}

// Action is one participant action. TargetIndex is a participant index for
// ally-targeted plays; -1 means self/default.
type Action struct {
	Kind        ActionKind `json:"kind"`
	CardIndex   int        `json:"cardIndex"`
	TargetIndex int        `json:"targetIndex"`
	ChoiceIndex int        `json:"choiceIndex"`
}

// Result is one ordered result event produced by resolving an action.
type Result struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Amount  int    `json:"amount,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Participant is one seat in the match, human or AI. Created at match start,
// never destroyed; a participant whose hero dies stays present but inactive.
type Participant struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	UserID        string      `json:"userId"`
	IsAI          bool        `json:"isAI"`
	AIProfile     string      `json:"aiProfile,omitempty"`
	Hero          *Hero       `json:"hero"`
	Hand          []deck.Card `json:"hand"`
	ActionsTaken  int         `json:"actionsTaken"`
	SpellsCast    int         `json:"spellsCast"`
}

// RequestKind routes entries on the match's serialized request channel.
type RequestKind int

const (
	ReqAction RequestKind = iota
	ReqAutoPass          // turn timer expired; current participant passes
	ReqAIAction          // AI decision re-injected after its thinking delay
	ReqSnapshot          // read-only snapshot for joiners and the HTTP API
	ReqSave              // serialized state for the persistence boundary
)

// ApplyResult is the reply to a ReqAction/ReqAIAction request.
type ApplyResult struct {
	Results    []Result
	Animations []string
	Sounds     []string
	Err        error
}

// Request is one entry on the match's action queue. All mutation flows through
// here; the match goroutine is the single writer.
type Request struct {
	Kind          RequestKind
	ParticipantID string
	Action        Action
	Reply         chan ApplyResult
	SnapshotReply chan Snapshot
	SaveReply     chan SaveReply
}

// SaveReply carries a serialized match state or the failure to produce one.
type SaveReply struct {
	Data []byte
	Err  error
}

// Publisher fans a payload out, in order, to every connection in a match room.
// Implemented by the synchronization layer; the engine never sees sockets.
type Publisher interface {
	Publish(matchID string, payload []byte)
}

// AIDecider proposes an action for an AI participant plus a thinking delay.
// It never mutates state; the proposal is routed through the action queue
// like any human action.
type AIDecider interface {
	Decide(s Snapshot, legal []Action, profile string) (Action, time.Duration)
}

// Match is the authoritative owner of one game instance.
type Match struct {
	ID                 string
	Mode               GameMode
	Status             MatchStatus
	Participants       []*Participant
	Rooms              []*Room
	CurrentRoom        int
	CurrentParticipant int
	TurnCounter        int
	RoundCounter       int

	// ComboTally counts spells per school this round; comboFired marks schools
	// whose combo bonus already resolved this round.
	ComboTally map[catalog.SpellSchool]int
	comboFired map[catalog.SpellSchool]bool

	Deck   *deck.Deck
	Config *config.Config

	Requests chan Request
	Done     chan struct{}
	quit     chan struct{}

	publisher Publisher
	decider   AIDecider

	turnTimerCancel chan struct{}
	aiTimerCancel   chan struct{}

	// OnMatchEnd is called once when the match reaches a terminal state.
	// outcome is "victory" or "defeat".
	OnMatchEnd func(m *Match, outcome string)
}

// Run is the match's main loop, processing requests strictly in arrival
// order. Run as a goroutine; one per live match.
func (m *Match) Run() {
	defer close(m.Done)

	m.broadcastState()
	m.startTurnTimer()
	m.maybeScheduleAI()

	for {
		select {
		case <-m.quit:
			m.cancelTurnTimer()
			m.cancelAITimer()
			return
		case req := <-m.Requests:
			m.handleRequest(req)
		}
	}
}

func (m *Match) handleRequest(req Request) {
	switch req.Kind {
	case ReqAction:
		res := m.resolve(req.ParticipantID, req.Action)
		if req.Reply != nil {
			req.Reply <- res
		}
	case ReqAIAction:
		p := m.participantByID(req.ParticipantID)
		if p == nil || m.Status != StatusActive || m.Participants[m.CurrentParticipant] != p {
			return // stale decision; the turn moved on
		}
		res := m.resolve(req.ParticipantID, req.Action)
		if res.Err != nil {
			// A mistimed or mistaken AI proposal must not stall the match.
			slog.Info("AI action rejected, passing instead", "tag", "game", "match", m.ID, "err", res.Err)
			m.resolve(req.ParticipantID, Action{Kind: ActionPass})
		}
	case ReqAutoPass:
		if m.Status != StatusActive {
			return
		}
		cur := m.Participants[m.CurrentParticipant]
		slog.Info("turn timed out, auto-passing", "tag", "game", "match", m.ID, "participant", cur.Name)
		m.resolve(cur.ID, Action{Kind: ActionPass})
	case ReqSnapshot:
		if req.SnapshotReply != nil {
			req.SnapshotReply <- m.Snapshot()
		}
	case ReqSave:
		if req.SaveReply != nil {
			data, err := m.marshalState()
			req.SaveReply <- SaveReply{Data: data, Err: err}
		}
	}
}

// resolve validates and applies one action, then broadcasts the ordered
// results and the new state. Rule violations leave all state untouched.
func (m *Match) resolve(participantID string, a Action) ApplyResult {
	results, err := m.apply(participantID, a)
	if err != nil {
		return ApplyResult{Err: err}
	}
	anims, sounds := hintsFor(results)
	m.broadcastActionResult(results, anims, sounds)
	m.broadcastState()
	if m.Status == StatusActive {
		m.startTurnTimer()
		m.maybeScheduleAI()
	} else {
		m.cancelTurnTimer()
		m.cancelAITimer()
	}
	return ApplyResult{Results: results, Animations: anims, Sounds: sounds}
}

// apply is the state machine core: dispatch, enemy turn, room completion,
// turn advancement, room advancement, terminal check. Callers must be on the
// match goroutine (or hold the match exclusively, as tests do).
func (m *Match) apply(participantID string, a Action) ([]Result, error) {
	if m.Status != StatusActive {
		return nil, gameerrors.ErrMatchNotActive
	}
	p := m.participantByID(participantID)
	if p == nil {
		return nil, gameerrors.ErrNotAuthorizedForMatch
	}
	if m.Participants[m.CurrentParticipant] != p {
		return nil, gameerrors.ErrNotYourTurn
	}

	room := m.Rooms[m.CurrentRoom]
	var results []Result
	var err error

	switch a.Kind {
	case ActionAttack:
		results, err = m.applyAttack(p, room)
	case ActionDefend:
		results, err = m.applyDefend(p)
	case ActionSpecial:
		results, err = m.applySpecial(p, room, a.TargetIndex)
	case ActionPass:
		results = []Result{{Type: "info", Message: p.Name + " passes their turn."}}
	case ActionPlayCard:
		results, err = m.applyPlayCard(p, room, a.CardIndex, a.TargetIndex)
	case ActionEventChoice:
		results, err = m.applyEventChoice(p, room, a.ChoiceIndex)
	case ActionChallenge:
		results, err = m.applyChallenge(p, room)
	default:
		err = gameerrors.ErrInvalidTarget
	}
	if err != nil {
		return nil, err
	}
	p.ActionsTaken++

	// Enemy turn: resolves after any player action that leaves the enemy alive.
	if room.Enemy != nil && room.Enemy.Alive() {
		results = append(results, m.enemyTurn(room.Enemy)...)
	}

	// Room completion: exactly once, credited to the acting participant.
	if room.EncounterDefeated() && !room.Completed {
		results = append(results, m.completeRoom(room, p)...)
	}

	wrapped := m.advanceTurn(p, room)

	if wrapped && room.Completed && m.CurrentRoom < len(m.Rooms)-1 {
		m.CurrentRoom++
		results = append(results, m.enterRoom(m.Rooms[m.CurrentRoom])...)
	}

	if end := m.checkTerminal(); end != nil {
		results = append(results, *end)
	}
	return results, nil
}

// advanceTurn ticks the acting hero and the room's enemy, draws up to hand
// capacity, then moves to the next living participant. Returns whether the
// rotation wrapped back to seat 0 (a new round).
func (m *Match) advanceTurn(p *Participant, room *Room) bool {
	results := tickHero(p.Hero, m.Config.ManaRegenPerTurn)
	_ = results // hero tick deltas surface through the state broadcast
	if room.Enemy != nil {
		tickEnemy(room.Enemy)
	}
	p.ActionsTaken = 0
	p.SpellsCast = 0

	if len(p.Hand) < m.Config.MaxHandSize {
		card, err := m.Deck.Draw()
		if err != nil {
			m.failMatch(err)
			return false
		}
		p.Hand = append(p.Hand, card)
	}

	wrapped := false
	n := len(m.Participants)
	for i := 0; i < n; i++ {
		m.CurrentParticipant = (m.CurrentParticipant + 1) % n
		m.TurnCounter++
		if m.CurrentParticipant == 0 {
			m.RoundCounter++
			m.ComboTally = make(map[catalog.SpellSchool]int)
			m.comboFired = make(map[catalog.SpellSchool]bool)
			wrapped = true
		}
		if m.Participants[m.CurrentParticipant].Hero.Alive() {
			break
		}
	}
	return wrapped
}

// enterRoom rolls the narrative event chance for the new room and reports the
// entry. Boss rooms never roll events.
func (m *Match) enterRoom(room *Room) []Result {
	results := []Result{{Type: "info", Message: "Entering " + room.Name + ". " + room.Description}}
	if room.Type != catalog.RoomBoss && !room.EventRolled {
		room.EventRolled = true
		if rand.Intn(100) < m.Config.EventChance {
			events := catalog.EventCards()
			tmpl := events[rand.Intn(len(events))]
			room.Event = &PendingEvent{CardID: tmpl.ID}
			results = append(results, Result{Type: "event", Message: tmpl.Story})
		}
	}
	if room.Enemy != nil && room.Enemy.Alive() {
		results = append(results, Result{Type: "combat", Message: "A " + room.Enemy.Name + " blocks your path!"})
	}
	return results
}

// checkTerminal evaluates defeat (all heroes dead) and victory (final room
// complete) and flips the match to its terminal state.
func (m *Match) checkTerminal() *Result {
	if m.Status != StatusActive {
		return nil
	}
	anyAlive := false
	for _, p := range m.Participants {
		if p.Hero.Alive() {
			anyAlive = true
			break
		}
	}
	if !anyAlive {
		m.Status = StatusCompleted
		m.finish("defeat")
		return &Result{Type: "defeat", Message: "All heroes have fallen. The dungeon claims another party..."}
	}
	if m.Rooms[len(m.Rooms)-1].Completed {
		m.Status = StatusCompleted
		m.finish("victory")
		return &Result{Type: "victory", Message: m.victoryMessage()}
	}
	return nil
}

func (m *Match) victoryMessage() string {
	if m.Mode == ModeCompetitive {
		best := m.Participants[0]
		for _, p := range m.Participants[1:] {
			if p.Hero.Treasure > best.Hero.Treasure {
				best = p
			}
		}
		return best.Name + " wins the dragon's hoard with " + strconv.Itoa(best.Hero.Treasure) + " treasure!"
	}
	total := 0
	for _, p := range m.Participants {
		total += p.Hero.Treasure
	}
	return "Victory! The Ancient Dragon falls! The party collected " + strconv.Itoa(total) + " treasure and saved the realm!"
}

// failMatch ends the match on a fatal internal condition such as deck
// exhaustion. Logged and broadcast, never swallowed.
func (m *Match) failMatch(err error) {
	slog.Error("fatal match error", "tag", "game", "match", m.ID, "err", err)
	m.Status = StatusCompleted
	m.broadcastActionResult([]Result{{Type: "fatal", Message: "The match ended unexpectedly: " + err.Error()}}, nil, nil)
	m.finish("defeat")
}

func (m *Match) finish(outcome string) {
	if m.OnMatchEnd != nil {
		m.OnMatchEnd(m, outcome)
	}
}

func (m *Match) participantByID(id string) *Participant {
	for _, p := range m.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Apply routes an action through the match's serialized queue and waits for
// the ordered result. Safe to call from any goroutine.
func (m *Match) Apply(ctx context.Context, participantID string, a Action) (ApplyResult, error) {
	reply := make(chan ApplyResult, 1)
	req := Request{Kind: ReqAction, ParticipantID: participantID, Action: a, Reply: reply}
	select {
	case m.Requests <- req:
	case <-m.Done:
		return ApplyResult{}, gameerrors.ErrMatchNotActive
	case <-ctx.Done():
		return ApplyResult{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return ApplyResult{}, ctx.Err()
	}
}

// SnapshotSync requests a consistent snapshot from the match goroutine.
func (m *Match) SnapshotSync(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case m.Requests <- Request{Kind: ReqSnapshot, SnapshotReply: reply}:
	case <-m.Done:
		return Snapshot{}, gameerrors.ErrMatchNotActive
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// SaveSync requests the serialized match state from the match goroutine.
func (m *Match) SaveSync(ctx context.Context) ([]byte, error) {
	reply := make(chan SaveReply, 1)
	select {
	case m.Requests <- Request{Kind: ReqSave, SaveReply: reply}:
	case <-m.Done:
		return nil, gameerrors.ErrMatchNotActive
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.Data, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop terminates the match goroutine. Used on server shutdown; a completed
// match otherwise keeps serving read-only snapshots.
func (m *Match) Stop() {
	select {
	case <-m.quit:
	default:
		close(m.quit)
	}
}

// startTurnTimer arms the auto-pass timer for the current turn. The match is
// never paused for an absent participant; an unacted turn times out and
// passes. No-op when TurnLimitSec <= 0.
func (m *Match) startTurnTimer() {
	if m.Config.TurnLimitSec <= 0 {
		return
	}
	m.cancelTurnTimer()
	m.turnTimerCancel = make(chan struct{})
	cancel := m.turnTimerCancel
	limit := time.Duration(m.Config.TurnLimitSec) * time.Second
	go func() {
		select {
		case <-time.After(limit):
			select {
			case m.Requests <- Request{Kind: ReqAutoPass}:
			case <-m.Done:
			}
		case <-cancel:
		}
	}()
}

func (m *Match) cancelTurnTimer() {
	if m.turnTimerCancel != nil {
		close(m.turnTimerCancel)
		m.turnTimerCancel = nil
	}
}

func (m *Match) broadcastState() {
	if m.publisher == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Type      string   `json:"type"`
		GameState Snapshot `json:"gameState"`
	}{Type: "gameStateUpdate", GameState: m.Snapshot()})
	if err != nil {
		slog.Error("marshaling game state", "tag", "game", "match", m.ID, "err", err)
		return
	}
	m.publisher.Publish(m.ID, payload)
}

func (m *Match) broadcastActionResult(results []Result, animations, sounds []string) {
	if m.publisher == nil {
		return
	}
	if animations == nil {
		animations = []string{}
	}
	if sounds == nil {
		sounds = []string{}
	}
	payload, err := json.Marshal(struct {
		Type       string   `json:"type"`
		Results    []Result `json:"results"`
		Animations []string `json:"animations"`
		Sounds     []string `json:"sounds"`
	}{Type: "actionResult", Results: results, Animations: animations, Sounds: sounds})
	if err != nil {
		slog.Error("marshaling action result", "tag", "game", "match", m.ID, "err", err)
		return
	}
	m.publisher.Publish(m.ID, payload)
}

// hintsFor derives the presentation hint arrays from the ordered results.
// Consumed only by clients; the engine attaches them to the wire contract.
func hintsFor(results []Result) (animations, sounds []string) {
	for _, r := range results {
		switch r.Type {
		case "damage":
			animations = append(animations, "damage")
			sounds = append(sounds, "attack")
		case "heal":
			animations = append(animations, "heal")
			sounds = append(sounds, "heal")
		case "buff":
			animations = append(animations, "heal")
			sounds = append(sounds, "special")
		case "combo":
			sounds = append(sounds, "combo")
		case "boss_special":
			animations = append(animations, "damage")
			sounds = append(sounds, "fireBreath")
		case "victory":
			sounds = append(sounds, "victory")
		case "defeat":
			sounds = append(sounds, "defeat")
		case "reward":
			sounds = append(sounds, "treasure")
		}
	}
	return animations, sounds
}
