package thumbs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestThumbPathIsStableAndUnique(t *testing.T) {
	g := NewGenerator(Config{OutputDir: "/thumbs"})

	a := g.thumbPath("/videos/a.mp4")
	if a != g.thumbPath("/videos/a.mp4") {
		t.Error("thumbnail path must be stable for a given source")
	}
	if a == g.thumbPath("/videos/b.mp4") {
		t.Error("different sources must not collide")
	}
	if filepath.Dir(a) != "/thumbs" {
		t.Errorf("expected output under /thumbs, got %s", a)
	}
	if !strings.HasSuffix(a, ".jpg") {
		t.Errorf("expected .jpg output, got %s", a)
	}
}

func TestCopyCustom(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(Config{OutputDir: filepath.Join(dir, "thumbs")})

	image := filepath.Join(dir, "poster.jpg")
	if err := os.WriteFile(image, []byte("jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := g.CopyCustom("/videos/movie.mp4", image)
	if err != nil {
		t.Fatalf("CopyCustom failed: %v", err)
	}
	if out != g.thumbPath("/videos/movie.mp4") {
		t.Errorf("custom image installed at unexpected path %s", out)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read installed thumbnail: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Error("installed thumbnail does not match the source image")
	}

	if _, err := g.CopyCustom("/videos/movie.mp4", filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected error for missing source image")
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	cause := errors.New("no video stream")
	err := &GenerationError{Path: "/videos/x.mp4", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("GenerationError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "/videos/x.mp4") {
		t.Errorf("error message should name the file, got %q", err.Error())
	}

	var genErr *GenerationError
	if !errors.As(error(err), &genErr) {
		t.Error("errors.As should find GenerationError")
	}
}
