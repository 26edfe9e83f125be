package theme

import "testing"

func TestFromName(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("ASSOC_NO_COLOR", "0")

	if got := FromName("mocha"); got.Text != CatppuccinMocha.Text {
		t.Error("mocha not returned")
	}
	if got := FromName("LATTE"); got.Text != CatppuccinLatte.Text {
		t.Error("name lookup should be case insensitive")
	}
	if got := FromName("plain"); got.Text != "" {
		t.Error("plain theme should use terminal defaults")
	}
}

func TestNoColorWinsOverName(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("ASSOC_NO_COLOR", "")

	if got := FromName("mocha"); got.Text != "" {
		t.Error("NO_COLOR should force the plain theme")
	}
}

func TestNoColorOverride(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("ASSOC_NO_COLOR", "0")

	if NoColorEnabled() {
		t.Error("ASSOC_NO_COLOR=0 should force colors on")
	}
}
