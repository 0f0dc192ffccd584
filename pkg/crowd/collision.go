package crowd

import (
	"fmt"
)

// reaction is one social collision cycle shared by its two participants.
// Idle -> Colliding on contact, Colliding -> Moving at half the reaction
// time, Moving -> Idle at the full reaction time.
type reaction struct {
	a, b     AgentID
	duration float64
	midTask  TaskID
	endTask  TaskID
}

func (r *reaction) partner(id AgentID) AgentID {
	if r.a == id {
		return r.b
	}
	return r.a
}

// Collide reports physical contact between two agents. Contacts are
// ignored while either agent is still in a reaction cycle.
func (w *World) Collide(a, b AgentID) error {
	first, second := w.agent(a), w.agent(b)
	if first == nil {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, a)
	}
	if second == nil {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, b)
	}
	if a == b || first.state != Idle || second.state != Idle {
		return nil
	}
	w.startReaction(first, second)
	return nil
}

func (w *World) startReaction(first, second *Agent) {
	cfg := w.cfg
	duration := cfg.MinReactionTime + w.rng.Float64()*(cfg.MaxReactionTime-cfg.MinReactionTime)
	r := &reaction{a: first.id, b: second.id, duration: duration}

	for _, pair := range [][2]*Agent{{first, second}, {second, first}} {
		me, other := pair[0], pair[1]
		me.state = Colliding
		me.collided = other.id
		me.reaction = r
		w.hooks.SetLookAt(me.id, other.id)
		w.hooks.PlayAudio(me.id)
		w.hooks.TriggerAnimation(me.id, AnimTalk)
	}
	w.log.Debugf("agents %d and %d collided, reacting for %.2fs", first.id, second.id, duration)

	r.midTask = w.sched.After(duration/2, func(float64) {
		r.midTask = 0
		for _, id := range []AgentID{r.a, r.b} {
			if ag := w.agent(id); ag != nil && ag.reaction == r {
				ag.state = Moving
				w.hooks.ClearLookAt(id)
				w.hooks.TriggerAnimation(id, AnimFollowMotionMatching)
			}
		}
	})
	r.endTask = w.sched.After(duration, func(float64) {
		r.endTask = 0
		w.endReaction(r)
	})
}

// endReaction returns both participants to Idle and drops the back
// references. Safe to call on a finished reaction.
func (w *World) endReaction(r *reaction) {
	if r.midTask != 0 {
		w.sched.Cancel(r.midTask)
		r.midTask = 0
	}
	if r.endTask != 0 {
		w.sched.Cancel(r.endTask)
		r.endTask = 0
	}
	for _, id := range []AgentID{r.a, r.b} {
		ag := w.agent(id)
		if ag == nil || ag.reaction != r {
			continue
		}
		ag.state = Idle
		ag.collided = NoAgent
		ag.reaction = nil
	}
}
