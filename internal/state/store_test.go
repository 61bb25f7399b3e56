package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/storefront/internal/model"
)

func TestTracker_ZeroValueIsIdle(t *testing.T) {
	var tr Tracker
	if tr.Status() != StatusIdle {
		t.Fatalf("Status = %q, want idle", tr.Status())
	}
	snap := tr.Snapshot()
	if snap.Status != StatusIdle || snap.LastError != nil {
		t.Fatalf("snapshot = %#v, want idle without error", snap)
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	var tr Tracker

	tr.Begin()
	if !tr.Snapshot().Loading() {
		t.Fatalf("Loading() = false after Begin")
	}

	before := time.Now()
	origErr := errors.New("boom")
	tr.Fail(origErr)
	snap := tr.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", snap.Status)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	tr.Begin()
	tr.Succeed()
	snap = tr.Snapshot()
	if snap.Status != StatusSucceeded || snap.LastError != nil {
		t.Fatalf("snapshot = %#v, want succeeded without error", snap)
	}

	tr.Reset()
	if tr.Status() != StatusIdle {
		t.Fatalf("Status after Reset = %q, want idle", tr.Status())
	}
}

func TestTracker_ConsecutiveFailures(t *testing.T) {
	var tr Tracker

	tr.Fail(errors.New("fail 1"))
	if tr.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	tr.Fail(errors.New("fail 2"))
	snap := tr.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	tr.Succeed()
	snap = tr.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("snapshot = %#v, want counter reset after success", snap)
	}
}

func TestSnapshot_DerivedCounts(t *testing.T) {
	cart := model.NewCart()
	cart.Lines[1] = model.CartLine{Product: model.Product{ID: 1, Price: 10}, Quantity: 2}
	cart.Lines[2] = model.CartLine{Product: model.Product{ID: 2, Price: 5}, Quantity: 1}
	cart.Recompute()

	snap := Snapshot{
		Identity: &model.Identity{Email: "u@x"},
		Cart:     cart,
		Orders: []model.Order{
			{ID: 1},
			{ID: 2},
			{ID: 3, IsPaid: true},
			{ID: 4, IsPaid: true, IsDelivered: true},
		},
	}

	if !snap.SignedIn() {
		t.Fatalf("SignedIn() = false, want true")
	}
	if snap.CartBadge() != 3 {
		t.Fatalf("CartBadge() = %d, want 3", snap.CartBadge())
	}
	if snap.UnpaidCount() != 2 {
		t.Fatalf("UnpaidCount() = %d, want 2", snap.UnpaidCount())
	}
	if got := snap.CountOrders(model.OrderPaid); got != 1 {
		t.Fatalf("CountOrders(paid) = %d, want 1", got)
	}
	if got := snap.CountOrders(model.OrderDelivered); got != 1 {
		t.Fatalf("CountOrders(delivered) = %d, want 1", got)
	}
}
