package timezones

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"America/Mexico_City", true},
		{"UTC", true},
		{"Asia/Tokyo", true},
		{"Invalid/Timezone", false},
		{"", false},
		{"Local", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestAll_CuratedZonesLoadAndAreSorted(t *testing.T) {
	zones := All()
	if len(zones) == 0 {
		t.Fatal("no zones")
	}
	for i, z := range zones {
		if !Valid(z.ID) {
			t.Errorf("curated zone %q does not load", z.ID)
		}
		if i == 0 {
			continue
		}
		prev := zones[i-1]
		if prev.Region > z.Region || (prev.Region == z.Region && prev.Label > z.Label) {
			t.Errorf("zones out of order at %d: %v before %v", i, prev, z)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("America/Bogota"); got != "Bogotá" {
		t.Errorf("Label = %q", got)
	}
	if got := Label("Asia/Tokyo"); got != "Asia/Tokyo" {
		t.Errorf("Label fallback = %q", got)
	}
}
