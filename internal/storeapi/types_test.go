package storeapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/five82/storefront/internal/model"
)

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13 10:11:12")
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("unknown layout should yield zero time")
	}
}

func TestOrderRecord_ItemsAsArrayAndMissingTotals(t *testing.T) {
	var rec OrderRecord
	data := `{"id":1,"order_items":[{"id":2,"price":5,"quantity":3}],"is_paid":true,"is_delivered":false}`
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	o, err := rec.Order()
	if err != nil {
		t.Fatalf("Order returned error: %v", err)
	}
	if o.TotalPrice != 15 || o.ItemCount != 1 {
		t.Fatalf("derived totals = %v/%d, want 15/1", o.TotalPrice, o.ItemCount)
	}
	if o.Status() != model.OrderPaid {
		t.Fatalf("status = %q, want paid", o.Status())
	}
}

func TestOrderRecord_CorruptItems(t *testing.T) {
	rec := OrderRecord{ID: 4, OrderItems: json.RawMessage(`"[{oops"`)}
	if _, err := rec.Order(); err == nil {
		t.Fatalf("expected error for corrupt items")
	}
}

func TestFlexBoolRejectsGarbage(t *testing.T) {
	var b flexBool
	if err := json.Unmarshal([]byte(`2`), &b); err == nil {
		t.Fatalf("expected error for flag 2")
	}
}

func TestProfileResultMerge(t *testing.T) {
	base := model.Identity{ID: "1", Name: "Ann", Email: "u@x"}
	got := ProfileResult{Name: "Anna"}.Merge(base)
	if got != (model.Identity{ID: "1", Name: "Anna", Email: "u@x"}) {
		t.Fatalf("Merge = %#v", got)
	}
}
