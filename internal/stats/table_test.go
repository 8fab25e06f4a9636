package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Digit", "Count", "Avg"}
	rows := [][]string{
		{"7", "12", "97.5%"},
		{"1", "3", "8.0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Digit Count   Avg" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "7        12 97.5%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "1         3  8.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
