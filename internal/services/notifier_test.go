package services

import "testing"

func TestNotifierDeliversToAllSubscribers(t *testing.T) {
	n := NewChangeNotifier()

	ch1, cancel1 := n.Subscribe("inv-1")
	defer cancel1()
	ch2, cancel2 := n.Subscribe("inv-1")
	defer cancel2()
	other, cancelOther := n.Subscribe("inv-2")
	defer cancelOther()

	n.Notify("inv-1")

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		default:
			t.Errorf("subscriber %d: expected signal", i)
		}
	}
	select {
	case <-other:
		t.Error("inv-2 subscriber must not receive inv-1 signals")
	default:
	}
}

func TestNotifierCoalescesBursts(t *testing.T) {
	n := NewChangeNotifier()
	ch, cancel := n.Subscribe("inv-1")
	defer cancel()

	// A subscriber that has not drained yet sees one pending signal, no
	// matter how many notifies happened in between.
	n.Notify("inv-1")
	n.Notify("inv-1")
	n.Notify("inv-1")

	<-ch
	select {
	case <-ch:
		t.Error("expected bursts to coalesce into a single signal")
	default:
	}
}

func TestNotifierCancelStopsDelivery(t *testing.T) {
	n := NewChangeNotifier()
	ch, cancel := n.Subscribe("inv-1")
	cancel()

	n.Notify("inv-1")

	select {
	case <-ch:
		t.Error("cancelled subscriber must not receive signals")
	default:
	}
}

func TestNotifyWithoutSubscribersIsNoop(t *testing.T) {
	n := NewChangeNotifier()
	n.Notify("inv-1")
}
