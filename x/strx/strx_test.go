package strx

import "testing"

func TestCoalesce(t *testing.T) {
	if Coalesce("", "d") != "d" || Coalesce("s", "d") != "s" {
		t.Fatal("Coalesce mismatch")
	}
}

func TestKeepHostname(t *testing.T) {
	got := Keep("Pixel It!.local_1-a", IsHostnameByte)
	if got != "PixelItlocal_1-a" {
		t.Fatalf("Keep = %q", got)
	}
}
