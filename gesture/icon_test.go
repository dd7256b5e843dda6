package gesture

import "testing"

func TestIconRegistry_Contains(t *testing.T) {
	var r IconRegistry
	r.SetBounds(50, 50, 24, 24)
	r.SetVisible(true)

	tests := []struct {
		name   string
		px, py int
		want   bool
	}{
		{"top-left corner", 50, 50, true},
		{"bottom-right corner", 74, 74, true},
		{"top-right corner", 74, 50, true},
		{"bottom-left corner", 50, 74, true},
		{"center", 60, 60, true},
		{"left of icon", 49, 60, false},
		{"right of icon", 75, 60, false},
		{"above icon", 60, 49, false},
		{"below icon", 60, 75, false},
		{"far away", 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.px, tt.py); got != tt.want {
				t.Errorf("Contains(%d, %d) = %v, want %v", tt.px, tt.py, got, tt.want)
			}
		})
	}
}

func TestIconRegistry_HiddenContainsNothing(t *testing.T) {
	var r IconRegistry
	r.SetBounds(50, 50, 24, 24)

	if r.Contains(60, 60) {
		t.Error("Contains before SetVisible(true) = true, want false")
	}

	r.SetVisible(true)
	r.SetVisible(false)
	for _, p := range [][2]int{{50, 50}, {60, 60}, {74, 74}} {
		if r.Contains(p[0], p[1]) {
			t.Errorf("hidden Contains(%d, %d) = true, want false", p[0], p[1])
		}
	}
}

func TestIconRegistry_Bounds(t *testing.T) {
	var r IconRegistry
	r.SetBounds(1, 2, 3, 4)
	r.SetVisible(true)

	want := IconBounds{X: 1, Y: 2, Width: 3, Height: 4, Visible: true}
	if got := r.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
}
