package game

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/config"
	"dungeon-legends-server/deck"
	"dungeon-legends-server/gameerrors"
)

// mockPublisher records every payload published for a match, in order.
type mockPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *mockPublisher) Publish(matchID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
}

func (p *mockPublisher) drain() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.payloads
	p.payloads = nil
	return out
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.TurnLimitSec = 0 // no auto-pass timers in tests
	cfg.EventChance = 0  // deterministic room entry
	return cfg
}

// newTestMatch builds a match with the given hero lineup, dealt and ready but
// with no goroutine running; tests drive apply directly.
func newTestMatch(t *testing.T, cfg *config.Config, heroes ...catalog.HeroType) *Match {
	t.Helper()
	d := deck.New(cfg.DeckSize)
	participants := make([]*Participant, len(heroes))
	for i, ht := range heroes {
		tmpl, ok := catalog.Hero(ht)
		if !ok {
			t.Fatalf("unknown hero type %q", ht)
		}
		hand, err := d.DrawN(cfg.StartingHandSize)
		if err != nil {
			t.Fatalf("dealing: %v", err)
		}
		participants[i] = &Participant{
			ID:   "p" + strconv.Itoa(i),
			Name: tmpl.Name,
			Hero: NewHero(tmpl),
			Hand: hand,
		}
	}
	templates := catalog.Dungeon()
	rooms := make([]*Room, len(templates))
	for i, rt := range templates {
		rooms[i] = NewRoom(rt)
	}
	return &Match{
		ID:           "test-match",
		Mode:         ModeCooperative,
		Status:       StatusActive,
		Participants: participants,
		Rooms:        rooms,
		TurnCounter:  1,
		RoundCounter: 1,
		ComboTally:   make(map[catalog.SpellSchool]int),
		comboFired:   make(map[catalog.SpellSchool]bool),
		Deck:         d,
		Config:       cfg,
		Requests:     make(chan Request),
		Done:         make(chan struct{}),
		quit:         make(chan struct{}),
	}
}

func TestApply_NotYourTurn(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	_, err := m.apply("p1", Action{Kind: ActionPass})
	if err != gameerrors.ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if m.CurrentParticipant != 0 {
		t.Errorf("rejected action must not advance the turn, index=%d", m.CurrentParticipant)
	}
}

func TestApply_MatchNotActive(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	m.Status = StatusCompleted
	_, err := m.apply("p0", Action{Kind: ActionPass})
	if err != gameerrors.ErrMatchNotActive {
		t.Fatalf("expected ErrMatchNotActive, got %v", err)
	}
}

func TestApply_UnknownParticipant(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	_, err := m.apply("stranger", Action{Kind: ActionPass})
	if err != gameerrors.ErrNotAuthorizedForMatch {
		t.Fatalf("expected ErrNotAuthorizedForMatch, got %v", err)
	}
}

func TestAttack_KillsGoblinAndGrantsTreasure(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	m.CurrentRoom = 1 // Goblin Warren: 2 HP, reward 1 treasure
	knight := m.Participants[0]

	results, err := m.apply("p0", Action{Kind: ActionAttack})
	if err != nil {
		t.Fatalf("attack failed: %v", err)
	}

	room := m.Rooms[1]
	if room.Enemy.Alive() {
		t.Errorf("goblin should be dead after a %d-attack hit", knight.Hero.TotalAttack())
	}
	if !room.Completed {
		t.Error("room should be completed once its enemy dies")
	}
	if knight.Hero.Treasure != 1 {
		t.Errorf("expected 1 treasure, got %d", knight.Hero.Treasure)
	}
	// The dead enemy must not counterattack.
	if knight.Hero.CurrentHealth != knight.Hero.MaxHealth {
		t.Errorf("hero took damage from a dead enemy: %d/%d", knight.Hero.CurrentHealth, knight.Hero.MaxHealth)
	}
	sawVictory := false
	for _, r := range results {
		if r.Type == "victory" {
			sawVictory = true
		}
	}
	if !sawVictory {
		t.Error("expected a victory result for the defeated goblin")
	}
}

func TestEnemyCounterattacksWhenAlive(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Rogue)
	m.CurrentRoom = 3 // Skeleton Warrior: 4 HP, 2 attack
	rogue := m.Participants[0]
	before := rogue.Hero.CurrentHealth

	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}

	// Rogue defense 1: 2 attack - 1 defense = 1 damage.
	if got := before - rogue.Hero.CurrentHealth; got != 1 {
		t.Errorf("expected 1 damage after defense, got %d", got)
	}
}

func TestRoundRobin_SkipsDeadHeroes(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard, catalog.Cleric)
	m.Participants[1].Hero.CurrentHealth = 0

	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if m.CurrentParticipant != 2 {
		t.Errorf("expected turn to skip the dead wizard to seat 2, got %d", m.CurrentParticipant)
	}
}

func TestAdvanceTurn_WrapIncrementsRoundAndClearsCombos(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	m.ComboTally[catalog.SchoolFire] = 2
	m.comboFired[catalog.SchoolFire] = true

	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if m.RoundCounter != 1 {
		t.Errorf("round must not advance mid-rotation, got %d", m.RoundCounter)
	}
	if _, err := m.apply("p1", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if m.RoundCounter != 2 {
		t.Errorf("expected round 2 after the rotation wrapped, got %d", m.RoundCounter)
	}
	if len(m.ComboTally) != 0 || len(m.comboFired) != 0 {
		t.Error("combo tallies must reset on a new round")
	}
}

func TestRoomAdvance_RequiresCompletionAndWrap(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	// Entrance is a safe room; it completes on the first action.
	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if m.CurrentRoom != 0 {
		t.Errorf("room must not advance before the rotation wraps, got %d", m.CurrentRoom)
	}
	if _, err := m.apply("p1", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if m.CurrentRoom != 1 {
		t.Errorf("expected room 1 after completion plus wrap, got %d", m.CurrentRoom)
	}
}

func TestIndexInvariants_HoldAcrossActions(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard, catalog.Rogue)
	for i := 0; i < 40 && m.Status == StatusActive; i++ {
		cur := m.Participants[m.CurrentParticipant]
		if _, err := m.apply(cur.ID, Action{Kind: ActionPass}); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
		if m.CurrentRoom < 0 || m.CurrentRoom >= len(m.Rooms) {
			t.Fatalf("room index out of range: %d", m.CurrentRoom)
		}
		if m.CurrentParticipant < 0 || m.CurrentParticipant >= len(m.Participants) {
			t.Fatalf("participant index out of range: %d", m.CurrentParticipant)
		}
	}
}

func TestBossFireBreath_HitsAllOnPatternRound(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Cleric)
	m.CurrentRoom = len(m.Rooms) - 1 // Dragon's Lair
	m.RoundCounter = 3
	knight, cleric := m.Participants[0], m.Participants[1]
	kBefore, cBefore := knight.Hero.CurrentHealth, cleric.Hero.CurrentHealth

	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}

	// Fire breath: attack+1 = 4 raw against everyone.
	if got := kBefore - knight.Hero.CurrentHealth; got != 4-knight.Hero.TotalDefense() {
		t.Errorf("knight fire breath damage = %d", got)
	}
	if got := cBefore - cleric.Hero.CurrentHealth; got != 4-cleric.Hero.TotalDefense() {
		t.Errorf("cleric fire breath damage = %d", got)
	}
}

func TestDefeat_WhenAllHeroesFall(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Wizard)
	m.CurrentRoom = 5 // Orc Brute: 6 HP, 2 attack; wizard 5 HP, 0 defense
	var outcome string
	m.OnMatchEnd = func(_ *Match, o string) { outcome = o }
	wizard := m.Participants[0]
	wizard.Hero.CurrentHealth = 2

	if _, err := m.apply("p0", Action{Kind: ActionPass}); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if wizard.Hero.Alive() {
		t.Fatalf("wizard should be dead, hp=%d", wizard.Hero.CurrentHealth)
	}
	if m.Status != StatusCompleted {
		t.Errorf("expected completed match, got %s", m.Status)
	}
	if outcome != "defeat" {
		t.Errorf("expected defeat outcome, got %q", outcome)
	}
}

func TestEventChoice_SecondResolutionFails(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	room := m.Rooms[0]
	room.Event = &PendingEvent{CardID: "ancient_blessing"}
	before := m.Participants[0].Hero.MaxHealth

	if _, err := m.apply("p0", Action{Kind: ActionEventChoice, ChoiceIndex: 0}); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	after := m.Participants[0].Hero.MaxHealth

	_, err := m.apply("p1", Action{Kind: ActionEventChoice, ChoiceIndex: 0})
	if err != gameerrors.ErrEventResolved {
		t.Fatalf("expected ErrEventResolved, got %v", err)
	}
	if m.Participants[0].Hero.MaxHealth != after {
		t.Error("rejected resolution must not re-apply the effect")
	}
	if after <= before {
		t.Errorf("ancient blessing should raise max HP: %d -> %d", before, after)
	}
}

func TestChallenge_FailureDealsHazardDamage(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	m.CurrentRoom = 2
	room := m.Rooms[2]
	room.Challenge.Difficulty = 99 // no roll can pass
	knight := m.Participants[0]
	before := knight.Hero.CurrentHealth

	if _, err := m.apply("p0", Action{Kind: ActionChallenge}); err != nil {
		t.Fatalf("challenge failed: %v", err)
	}
	if room.Completed {
		t.Error("failed challenge must not complete the room")
	}
	// Hazard damage ignores defense.
	if got := before - knight.Hero.CurrentHealth; got != room.Challenge.FailDamage {
		t.Errorf("expected %d hazard damage, got %d", room.Challenge.FailDamage, got)
	}
}

func TestChallenge_SuccessCompletesRoom(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	m.CurrentRoom = 2
	knight := m.Participants[0]
	knight.Hero.Attack = 10 // d6 + 10 always clears difficulty 5

	if _, err := m.apply("p0", Action{Kind: ActionChallenge}); err != nil {
		t.Fatalf("challenge failed: %v", err)
	}
	if !m.Rooms[2].Completed {
		t.Error("passed challenge should complete the room")
	}
	if knight.Hero.Treasure != 1 {
		t.Errorf("expected the bridge treasure, got %d", knight.Hero.Treasure)
	}
}

func TestSpecial_CooldownAndMana(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Wizard)
	m.CurrentRoom = 5 // Orc Brute stays alive through one blast
	wizard := m.Participants[0]

	if _, err := m.apply("p0", Action{Kind: ActionSpecial, TargetIndex: -1}); err != nil {
		t.Fatalf("arcane blast failed: %v", err)
	}
	// 4 blast damage on 6 HP, then the ignite rider ticks for 1 on turn end.
	if m.Rooms[5].Enemy.CurrentHealth != 1 {
		t.Errorf("expected orc at 1 HP after blast plus ignite tick, got %d", m.Rooms[5].Enemy.CurrentHealth)
	}
	// Cooldown was set to 3 and ticked once on turn advance.
	if cd := wizard.Hero.Cooldowns[catalog.ArcaneBlast]; cd != 2 {
		t.Errorf("expected cooldown 2 after one tick, got %d", cd)
	}

	_, err := m.apply("p0", Action{Kind: ActionSpecial, TargetIndex: -1})
	if err != gameerrors.ErrAbilityOnCooldown {
		t.Fatalf("expected ErrAbilityOnCooldown, got %v", err)
	}
}

func TestAutoPassRequest_PassesCurrentTurn(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	m.handleRequest(Request{Kind: ReqAutoPass})
	if m.CurrentParticipant != 1 {
		t.Errorf("expected auto-pass to advance the turn, index=%d", m.CurrentParticipant)
	}
}

func TestStaleAIDecision_IsDropped(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	m.Participants[1].IsAI = true
	// Decision for p1 while it is p0's turn: must be ignored entirely.
	m.handleRequest(Request{Kind: ReqAIAction, ParticipantID: "p1", Action: Action{Kind: ActionPass}})
	if m.CurrentParticipant != 0 {
		t.Errorf("stale AI decision must not act, index=%d", m.CurrentParticipant)
	}
}

func TestRun_BroadcastsInOrder(t *testing.T) {
	cfg := testConfig()
	pub := &mockPublisher{}
	m := newTestMatch(t, cfg, catalog.Knight, catalog.Wizard)
	m.publisher = pub
	go m.Run()
	defer m.Stop()

	time.Sleep(20 * time.Millisecond)
	pub.drain() // initial state broadcast

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := m.Apply(ctx, "p0", Action{Kind: ActionPass})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("pass rejected: %v", res.Err)
	}

	time.Sleep(20 * time.Millisecond)
	payloads := pub.drain()
	if len(payloads) < 2 {
		t.Fatalf("expected actionResult then gameStateUpdate, got %d payloads", len(payloads))
	}
	var first, second struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payloads[0], &first); err != nil {
		t.Fatalf("decoding first payload: %v", err)
	}
	if err := json.Unmarshal(payloads[1], &second); err != nil {
		t.Fatalf("decoding second payload: %v", err)
	}
	if first.Type != "actionResult" || second.Type != "gameStateUpdate" {
		t.Errorf("unexpected broadcast order: %s, %s", first.Type, second.Type)
	}
}

func TestCompletedMatch_ServesSnapshots(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight)
	m.Status = StatusCompleted
	go m.Run()
	defer m.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := m.SnapshotSync(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if s.Status != StatusCompleted {
		t.Errorf("expected completed status, got %s", s.Status)
	}

	res, err := m.Apply(ctx, "p0", Action{Kind: ActionPass})
	if err != nil {
		t.Fatalf("apply transport failed: %v", err)
	}
	if res.Err != gameerrors.ErrMatchNotActive {
		t.Errorf("expected ErrMatchNotActive on a completed match, got %v", res.Err)
	}
}

func TestLegalActions_RespectsState(t *testing.T) {
	m := newTestMatch(t, testConfig(), catalog.Knight, catalog.Wizard)
	m.CurrentRoom = 1 // goblin alive

	kinds := map[ActionKind]bool{}
	for _, a := range m.LegalActions() {
		kinds[a.Kind] = true
	}
	if !kinds[ActionAttack] || !kinds[ActionPass] || !kinds[ActionDefend] {
		t.Errorf("expected attack/pass/defend to be legal, got %v", kinds)
	}
	if kinds[ActionChallenge] || kinds[ActionEventChoice] {
		t.Errorf("challenge/event must not be legal in a combat room, got %v", kinds)
	}

	m.Rooms[1].Enemy.CurrentHealth = 0
	kinds = map[ActionKind]bool{}
	for _, a := range m.LegalActions() {
		kinds[a.Kind] = true
	}
	if kinds[ActionAttack] {
		t.Error("attack must not be legal with no living enemy")
	}
}
