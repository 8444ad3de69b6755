package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

func TestActionLayerAlwaysIncludesNext(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	host.fragments = []fragment.Fragment{{Kind: fragment.KindEffort, Name: "Thrusters"}}

	al := NewActionLayer()
	al.OnMount(host)

	actions := al.Actions(host)
	require.Len(t, actions, 1)
	assert.Equal(t, "next", actions[0].Name)
}

func TestActionLayerOffersPauseResumeForTimerBlocks(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	host.fragments = []fragment.Fragment{{Kind: fragment.KindTimer, ValueMs: 60000}}

	al := NewActionLayer()
	al.OnMount(host)

	names := make([]string, 0)
	for _, a := range al.Actions(host) {
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"next", "pause", "resume"}, names)
}

func TestActionLayerOnMountRegistersForRegisterEventHandler(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	al := NewActionLayer()

	acts := al.OnMount(host)

	require.Len(t, acts, 1)
	assert.Equal(t, action.KindRegisterHandler, acts[0].Kind)
	payload := acts[0].Payload.(action.RegisterHandlerPayload)
	assert.Equal(t, "register-event-handler", payload.EventName)
}

func TestActionLayerRegisterEventHandlerRelaysDriverRequestIntoARegisterHandlerAction(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	al := NewActionLayer()
	acts := al.OnMount(host)
	handler := acts[0].Payload.(action.RegisterHandlerPayload).Fn

	var invoked string
	req := RegisterEventHandlerRequest{
		EventName: "pause",
		Scope:     action.ScopeActive,
		Fn: func(eventName string, _ any, _ time.Time) []action.Action {
			invoked = eventName
			return nil
		},
	}

	produced := handler("register-event-handler", req, time.Now())

	require.Len(t, produced, 1)
	assert.Equal(t, action.KindRegisterHandler, produced[0].Kind)
	assert.Equal(t, memory.Key("b1"), produced[0].BlockKey)
	relayedPayload := produced[0].Payload.(action.RegisterHandlerPayload)
	assert.Equal(t, "pause", relayedPayload.EventName)

	relayedPayload.Fn("pause", nil, time.Now())
	assert.Equal(t, "pause", invoked)
}

func TestActionLayerRegisterEventHandlerIgnoresWrongPayloadType(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	al := NewActionLayer()
	acts := al.OnMount(host)
	handler := acts[0].Payload.(action.RegisterHandlerPayload).Fn

	produced := handler("register-event-handler", "not-a-request", time.Now())

	assert.Nil(t, produced)
}

func TestActionLayerPublishOverwritesAvailableActions(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	al := NewActionLayer()
	al.OnMount(host)

	al.Publish(host, []UserAction{{Name: "resume", Label: "Resume"}})

	actions := al.Actions(host)
	require.Len(t, actions, 1)
	assert.Equal(t, "resume", actions[0].Name)
}
