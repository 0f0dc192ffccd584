package crowd

import (
	golog "github.com/tochemey/goakt/v3/log"
)

// AnimationState is a state the external animator can be asked to enter.
type AnimationState string

const (
	AnimTalk                 AnimationState = "Talk"
	AnimFollowMotionMatching AnimationState = "FollowMotionMatching"
)

// SocialHooks receives fire-and-forget social reaction signals at
// collision phase transitions. Return values are never consulted.
type SocialHooks interface {
	SetLookAt(agent, target AgentID)
	ClearLookAt(agent AgentID)
	PlayAudio(agent AgentID)
	TriggerAnimation(agent AgentID, state AnimationState)
}

// NopHooks ignores every signal.
type NopHooks struct{}

func (NopHooks) SetLookAt(AgentID, AgentID) {}
func (NopHooks) ClearLookAt(AgentID) {}
func (NopHooks) PlayAudio(AgentID) {}
func (NopHooks) TriggerAnimation(AgentID, AnimationState) {}

// LogHooks writes every signal to a goakt logger at debug level.
type LogHooks struct {
	Logger golog.Logger
}

func (h LogHooks) SetLookAt(agent, target AgentID) {
	h.Logger.Debugf("agent %d looks at %d", agent, target)
}

func (h LogHooks) ClearLookAt(agent AgentID) {
	h.Logger.Debugf("agent %d clears look-at", agent)
}

func (h LogHooks) PlayAudio(agent AgentID) {
	h.Logger.Debugf("agent %d plays reaction audio", agent)
}

func (h LogHooks) TriggerAnimation(agent AgentID, state AnimationState) {
	h.Logger.Debugf("agent %d animation -> %s", agent, state)
}
