package utils

import (
	"strings"
	"testing"
)

func TestCreatePictureName(t *testing.T) {
	name, err := CreatePictureName("party.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected .png suffix, got %q", name)
	}

	// Extension casing is normalized.
	name, err = CreatePictureName("IMG_0042.JPG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("expected .jpg suffix, got %q", name)
	}
}

func TestCreatePictureNameRejectsBadInput(t *testing.T) {
	if _, err := CreatePictureName("animation.gif"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if _, err := CreatePictureName("noextension"); err == nil {
		t.Fatal("expected error for missing extension")
	}
}

func TestCreatePictureNameIsUnique(t *testing.T) {
	a, _ := CreatePictureName("a.png")
	b, _ := CreatePictureName("a.png")
	if a == b {
		t.Fatal("two uploads of the same filename must not collide")
	}
}
