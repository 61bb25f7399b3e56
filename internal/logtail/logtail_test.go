package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestActivity(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "storefront.log")
	lines := []string{
		`{"severity":"INFO","logger":"session","message":"sign in succeeded","email":"u@x"}`,
		``,
		`{"severity":"WARN","logger":"cart","message":"remove of absent cart line","product_id":3}`,
		`not json`,
		`{"severity":"INFO","logger":"orders","message":"order created","order_id":42}`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Activity(logPath, 0, "")
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	want := []string{
		"INFO  session: sign in succeeded email=u@x",
		"WARN  cart: remove of absent cart line product_id=3",
		"not json",
		"INFO  orders: order created order_id=42",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Activity() = %#v, want %#v", got, want)
	}

	got, err = Activity(logPath, 1, "CART")
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "WARN  cart:") {
		t.Fatalf("filtered Activity() = %#v", got)
	}

	got, err = Activity(logPath, 2, "")
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	if len(got) != 2 || got[1] != want[3] {
		t.Fatalf("limited Activity() = %#v", got)
	}
}
