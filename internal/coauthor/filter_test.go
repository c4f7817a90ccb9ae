package coauthor

import "testing"

func TestFilter_Key(t *testing.T) {
	if (Filter{}).Key() != (Filter{MinShared: 1}).Key() {
		t.Error("MinShared 0 and 1 should share a key")
	}
	if (Filter{YearFrom: 2020}).Key() == (Filter{YearTo: 2020}).Key() {
		t.Error("distinct year bounds share a key")
	}
	if got, want := (Filter{YearFrom: 2015, YearTo: 2024, MinShared: 2, MaxCoauthors: 50}).Key(), "years=2015:2024;min=2;max=50"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		in       string
		from, to int
		wantErr  bool
	}{
		{"", 0, 0, false},
		{"2015:2024", 2015, 2024, false},
		{"2015:", 2015, 0, false},
		{":2024", 0, 2024, false},
		{"2020", 2020, 2020, false},
		{"abc", 0, 0, true},
		{"2015:x", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			from, to, err := ParseYears(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYears(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if from != tt.from || to != tt.to {
				t.Errorf("ParseYears(%q) = %d, %d; want %d, %d", tt.in, from, to, tt.from, tt.to)
			}
		})
	}
}
