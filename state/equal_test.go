package state

import "testing"

func TestEqual(t *testing.T) {
	type point struct{ X, Y int }
	type boxed struct{ V any }

	p := &point{1, 2}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 1, false},
		{"value vs nil", 1, nil, false},
		{"equal ints", 5, 5, true},
		{"different ints", 5, 6, false},
		{"different numeric types", 5, int64(5), false},
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"equal bools", true, true, true},
		{"equal structs", point{1, 2}, point{1, 2}, true},
		{"different structs", point{1, 2}, point{1, 3}, false},
		{"same pointer", p, p, true},
		{"distinct pointers equal pointees", &point{1, 2}, &point{1, 2}, false},
		{"slices never equal", []int{1}, []int{1}, false},
		{"maps never equal", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"funcs never equal", fn, fn, false},
		{"incomparable dynamic field", boxed{[]int{1}}, boxed{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := equal(tt.a, tt.b); got != tt.want {
				t.Errorf("equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
