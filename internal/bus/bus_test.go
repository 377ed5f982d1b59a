package bus

import (
	"testing"

	"github.com/finvue/marketsync/internal/model"
)

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	b := New(nil)

	var order []int
	b.Subscribe(EventError, func(Event) { order = append(order, 1) })
	b.Subscribe(EventError, func(Event) { order = append(order, 2) })
	b.Subscribe(EventError, func(Event) { order = append(order, 3) })

	b.Emit(ErrorEvent{Channel: model.ChannelCrypto, Message: "boom"})

	if len(order) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("invocation %d = subscriber %d, want %d", i, got, i+1)
		}
	}
}

func TestBus_EmitTypedPayload(t *testing.T) {
	b := New(nil)

	var got ConnectionChangeEvent
	b.Subscribe(EventConnectionChange, func(e Event) {
		got = e.(ConnectionChangeEvent)
	})

	b.Emit(ConnectionChangeEvent{
		Channel: model.ChannelCrypto,
		Status:  model.StatusConnected,
		Mode:    model.ModePush,
	})

	if got.Channel != model.ChannelCrypto {
		t.Errorf("Channel = %s, want crypto", got.Channel)
	}
	if got.Status != model.StatusConnected {
		t.Errorf("Status = %s, want connected", got.Status)
	}
	if got.Mode != model.ModePush {
		t.Errorf("Mode = %s, want push", got.Mode)
	}
}

func TestBus_UpdateEventName(t *testing.T) {
	e := UpdateEvent{Channel: model.ChannelEquity}
	if e.EventName() != "equity_update" {
		t.Errorf("EventName() = %s, want equity_update", e.EventName())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(nil)

	var calls int
	unsub := b.Subscribe(EventError, func(Event) { calls++ })

	b.Emit(ErrorEvent{Message: "first"})
	unsub()
	b.Emit(ErrorEvent{Message: "second"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_UnsubscribeTwiceIsNoop(t *testing.T) {
	b := New(nil)

	b.Subscribe(EventError, func(Event) {})
	unsub := b.Subscribe(EventError, func(Event) {})

	unsub()
	unsub() // must not panic or remove anyone else

	if b.Len(EventError) != 1 {
		t.Errorf("Len = %d, want 1", b.Len(EventError))
	}
}

func TestBus_PanickingSubscriberIsIsolated(t *testing.T) {
	b := New(nil)

	var second bool
	b.Subscribe(EventError, func(Event) { panic("bad subscriber") })
	b.Subscribe(EventError, func(Event) { second = true })

	b.Emit(ErrorEvent{Message: "boom"})

	if !second {
		t.Error("second subscriber was not notified after first panicked")
	}
}

func TestBus_EmitWithNoSubscribers(t *testing.T) {
	b := New(nil)

	// Fire-and-forget: nothing queued, nothing crashes.
	b.Emit(UpdateEvent{Channel: model.ChannelCrypto})

	var calls int
	b.Subscribe(UpdateEventName(model.ChannelCrypto), func(Event) { calls++ })
	if calls != 0 {
		t.Error("late subscriber must not see earlier events")
	}
}

func TestBus_Clear(t *testing.T) {
	b := New(nil)

	var calls int
	unsub := b.Subscribe(EventError, func(Event) { calls++ })
	b.Subscribe(EventMarketStatus, func(Event) { calls++ })

	b.Clear()
	b.Emit(ErrorEvent{Message: "after clear"})
	b.Emit(MarketStatusEvent{Phase: model.PhaseOpen})

	if calls != 0 {
		t.Errorf("calls after Clear = %d, want 0", calls)
	}

	// Stale unsubscribe handles stay harmless.
	unsub()
}

func TestBus_NilHandler(t *testing.T) {
	b := New(nil)

	unsub := b.Subscribe(EventError, nil)
	unsub()

	if b.Len(EventError) != 0 {
		t.Errorf("Len = %d, want 0", b.Len(EventError))
	}
	b.Emit(ErrorEvent{Message: "x"})
}
