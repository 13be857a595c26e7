package task

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/player"
)

// ContentConfig maps a container content name to the verb used to consume it
// and the interval to wait before the meter is expected to have risen.
type ContentConfig struct {
	Name         string
	Verb         string
	WaitInterval time.Duration
}

// DrinkerConfig wires the liquid-consumption automaton. The allow-list order
// is the container priority order. The target meter is configurable; the
// fields keep their stamina names because that is the only meter the known
// configurations wire.
type DrinkerConfig struct {
	Meter            string
	OpenBeltTimeout  time.Duration
	SipTimeout       time.Duration
	MaxStamina       int
	StaminaThreshold int
	LiquidContainers []string
	Contents         []ContentConfig
}

type drinkerState int

const (
	drinkerIdle drinkerState = iota
	drinkerSelecting
	drinkerOpeningBelt
	drinkerSipping
	drinkerCooldown
	drinkerFailed
)

func (s drinkerState) String() string {
	switch s {
	case drinkerIdle:
		return "idle"
	case drinkerSelecting:
		return "selecting_container"
	case drinkerOpeningBelt:
		return "opening_belt"
	case drinkerSipping:
		return "sipping"
	case drinkerCooldown:
		return "cooldown"
	case drinkerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type selectedContainer struct {
	itemID int
	inBelt bool
}

// Drinker keeps a meter above its threshold by drinking from allowed liquid
// containers. It is a maintenance task: while the meter is fine it stays
// Idle and emits nothing, tick after tick. All timers are deadlines checked
// against the tick clock, never sleeps.
type Drinker struct {
	cfg    DrinkerConfig
	state  drinkerState
	reason Reason

	target     selectedContainer
	skip       map[int]bool
	openedBelt bool

	beltDeadline time.Time
	sipDeadline  time.Time
	sipIssuedAt  time.Time
	sipIssued    bool
	waitUntil    time.Time

	verb          string
	waitInterval  time.Duration
	baselineMeter int
	baselineUnits int
}

func NewDrinker(cfg DrinkerConfig) *Drinker {
	if cfg.Meter == "" {
		cfg.Meter = "stamina"
	}
	return &Drinker{cfg: cfg, skip: map[int]bool{}}
}

func (t *Drinker) Name() string { return "Drinker" }

// StateName exposes the current state for status reporting.
func (t *Drinker) StateName() string { return t.state.String() }

// maxStateHops bounds internal transitions within one step so a transition
// cycle can never wedge a tick.
const maxStateHops = 8

func (t *Drinker) Step(ctx context.Context, env Env) Result {
	for hops := 0; hops < maxStateHops; hops++ {
		switch t.state {
		case drinkerFailed:
			return failed(t.reason)

		case drinkerIdle:
			m := env.Player.Meter(t.cfg.Meter)
			if m.Value >= t.cfg.StaminaThreshold || m.Value >= t.cfg.MaxStamina {
				return running()
			}
			t.skip = map[int]bool{}
			t.state = drinkerSelecting

		case drinkerSelecting:
			sel, ok := t.selectContainer(env)
			if !ok {
				env.Log.Warn("drinker: no usable liquid container")
				t.fail(ReasonResourceUnavailable)
				continue
			}
			t.target = sel
			if sel.inBelt && !env.Player.BeltOpen {
				beltItem, ok := env.Player.Equipment[player.SlotBelt]
				if !ok {
					t.skip[sel.itemID] = true
					continue
				}
				t.state = drinkerOpeningBelt
				t.beltDeadline = env.Now.Add(t.cfg.OpenBeltTimeout)
				t.openedBelt = true
				return running(ports.Action{Kind: ports.ActionOpenContainer, ItemID: beltItem.ID})
			}
			t.state = drinkerSipping
			t.sipIssued = false

		case drinkerOpeningBelt:
			if env.Player.BeltOpen {
				t.state = drinkerSipping
				t.sipIssued = false
				continue
			}
			if !env.Now.Before(t.beltDeadline) {
				env.Log.Warn("drinker: belt did not open in time")
				t.fail(ReasonActionTimeout)
				continue
			}
			return running()

		case drinkerSipping:
			res, next := t.stepSipping(env)
			if !next {
				return res
			}

		case drinkerCooldown:
			if env.Now.Before(t.waitUntil) {
				return running()
			}
			m := env.Player.Meter(t.cfg.Meter)
			if m.Value >= t.cfg.MaxStamina || (m.Max > 0 && m.Value >= m.Max) {
				t.toIdle()
				continue
			}
			item, ok := env.Player.ItemByID(t.target.itemID)
			if !ok || item.Content == nil || item.Content.Units <= 0 {
				t.toIdle()
				continue
			}
			t.state = drinkerSipping
			t.sipIssued = false
		}
	}
	return running()
}

// stepSipping returns (result, false) when the step ends here, or
// (zero, true) when the state machine should keep advancing.
func (t *Drinker) stepSipping(env Env) (Result, bool) {
	item, ok := env.Player.ItemByID(t.target.itemID)
	if !ok {
		t.state = drinkerSelecting
		return Result{}, true
	}

	if !t.sipIssued {
		if item.Content == nil || item.Content.Units <= 0 {
			t.skip[item.ID] = true
			t.state = drinkerSelecting
			return Result{}, true
		}
		cc, ok := t.contentConfig(item.Content.Name)
		if !ok {
			// Unknown liquid: skip this container, try another. Explicitly
			// non-terminal.
			env.Log.WithFields(logrus.Fields{
				"item":    item.Name,
				"content": item.Content.Name,
			}).Warn("drinker: content not in contents table, skipping container")
			t.skip[item.ID] = true
			t.state = drinkerSelecting
			return Result{}, true
		}
		t.verb = cc.Verb
		t.waitInterval = cc.WaitInterval
		t.sipIssued = true
		t.sipIssuedAt = env.Now
		t.sipDeadline = env.Now.Add(t.cfg.SipTimeout)
		t.baselineMeter = env.Player.Meter(t.cfg.Meter).Value
		t.baselineUnits = item.Content.Units
		return running(ports.Action{Kind: ports.ActionUseItem, ItemID: item.ID, Verb: t.verb}), false
	}

	// Awaiting the server acknowledgment: the meter rising or the container
	// draining counts as one.
	meter := env.Player.Meter(t.cfg.Meter).Value
	units := 0
	if item.Content != nil {
		units = item.Content.Units
	}
	if meter > t.baselineMeter || units < t.baselineUnits {
		t.waitUntil = t.sipIssuedAt.Add(t.waitInterval)
		t.state = drinkerCooldown
		return Result{}, true
	}
	if !env.Now.Before(t.sipDeadline) {
		env.Log.Warn("drinker: sip not acknowledged, reselecting")
		t.sipIssued = false
		t.state = drinkerSelecting
		return Result{}, true
	}
	return running(), false
}

// selectContainer scans for an allowed liquid container: allow-list order
// first, then belt before equipment before inventory, then lowest item ID.
func (t *Drinker) selectContainer(env Env) (selectedContainer, bool) {
	for _, allowed := range t.cfg.LiquidContainers {
		if sel, ok := pickContainer(env.Player.Belt, allowed, t.skip); ok {
			return selectedContainer{itemID: sel, inBelt: true}, true
		}
		if sel, ok := pickContainer(equipmentItems(env.Player), allowed, t.skip); ok {
			return selectedContainer{itemID: sel}, true
		}
		if sel, ok := pickContainer(env.Player.Inventory, allowed, t.skip); ok {
			return selectedContainer{itemID: sel}, true
		}
	}
	return selectedContainer{}, false
}

func pickContainer(items []player.Item, allowed string, skip map[int]bool) (int, bool) {
	best := -1
	for _, it := range items {
		if !it.LiquidContainer || it.Name != allowed || skip[it.ID] {
			continue
		}
		if best < 0 || it.ID < best {
			best = it.ID
		}
	}
	return best, best >= 0
}

func equipmentItems(p *player.State) []player.Item {
	slots := make([]string, 0, len(p.Equipment))
	for slot := range p.Equipment {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	items := make([]player.Item, 0, len(slots))
	for _, slot := range slots {
		items = append(items, p.Equipment[slot])
	}
	return items
}

// contentConfig matches by substring, so "Spring Water" hits the "Water"
// entry. First match in declared order wins.
func (t *Drinker) contentConfig(content string) (ContentConfig, bool) {
	for _, cc := range t.cfg.Contents {
		if strings.Contains(content, cc.Name) {
			return cc, true
		}
	}
	return ContentConfig{}, false
}

// toIdle ends a drink cycle. The belt-open bookkeeping belongs to the cycle
// that issued it, so a later cancel owes no compensating close.
func (t *Drinker) toIdle() {
	t.state = drinkerIdle
	t.openedBelt = false
}

func (t *Drinker) fail(reason Reason) {
	t.state = drinkerFailed
	t.reason = reason
}

// Cancel issues a compensating close when the task is torn down with the
// belt left open between OpeningBelt and Sipping.
func (t *Drinker) Cancel(env Env) []ports.Action {
	if t.openedBelt && (t.state == drinkerOpeningBelt || t.state == drinkerSipping) {
		if beltItem, ok := env.Player.Equipment[player.SlotBelt]; ok {
			return []ports.Action{{Kind: ports.ActionCloseContainer, ItemID: beltItem.ID}}
		}
	}
	return nil
}

func (t *Drinker) sealed() {}
