package layout

import "testing"

func TestTierForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  Tier
	}{
		{40, TierNarrow},
		{99, TierNarrow},
		{100, TierSplit},
		{159, TierSplit},
		{160, TierWide},
		{300, TierWide},
	}
	for _, tt := range tests {
		if got := TierForWidth(tt.width); got != tt.want {
			t.Errorf("TierForWidth(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello w…"},
		{"héllo wörld", 7, "héllo …"},
		{"abc", 0, ""},
		{"abcdef", 1, "a"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}

func TestSplitProportions(t *testing.T) {
	left, right := SplitProportions(120)
	if left+right != 114 {
		t.Errorf("left+right = %d", left+right)
	}
	if left >= right {
		t.Errorf("list pane (%d) should be narrower than detail (%d)", left, right)
	}

	left, right = SplitProportions(80)
	if left != 80 || right != 0 {
		t.Errorf("narrow split = %d/%d, want full/0", left, right)
	}
}
