package media

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestApplyTransforms_FillCropsToExactBox(t *testing.T) {
	src := imaging.New(800, 600, color.NRGBA{R: 200, A: 255})
	out, quality := applyTransforms(src, []Transform{
		{Width: 400, Height: 400, Crop: "fill", Gravity: "face", Quality: 90},
	})

	bounds := out.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 400 {
		t.Errorf("bounds = %dx%d, want 400x400", bounds.Dx(), bounds.Dy())
	}
	if quality != 90 {
		t.Errorf("quality = %d, want 90", quality)
	}
}

func TestApplyTransforms_Resize(t *testing.T) {
	src := imaging.New(2000, 1332, color.NRGBA{G: 120, A: 255})
	out, _ := applyTransforms(src, []Transform{
		{Width: 1000, Height: 666, Quality: 90},
	})

	bounds := out.Bounds()
	if bounds.Dx() != 1000 || bounds.Dy() != 666 {
		t.Errorf("bounds = %dx%d, want 1000x666", bounds.Dx(), bounds.Dy())
	}
}

func TestApplyTransforms_EmptyRecipeKeepsImage(t *testing.T) {
	src := imaging.New(320, 240, color.NRGBA{B: 50, A: 255})
	out, quality := applyTransforms(src, nil)

	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: %v", out.Bounds())
	}
	if quality != 90 {
		t.Errorf("quality = %d, want the default 90", quality)
	}
}

func TestEncodingFor(t *testing.T) {
	if format, ext := encodingFor("png"); format != imaging.PNG || ext != "png" {
		t.Errorf("png: got %v/%s", format, ext)
	}
	if format, ext := encodingFor("webp"); format != imaging.JPEG || ext != "jpeg" {
		t.Errorf("unsupported format should fall back to jpeg, got %v/%s", format, ext)
	}
	if format, ext := encodingFor(""); format != imaging.JPEG || ext != "jpeg" {
		t.Errorf("default: got %v/%s", format, ext)
	}
}

func TestAnchorFor(t *testing.T) {
	cases := map[string]imaging.Anchor{
		"north": imaging.Top,
		"south": imaging.Bottom,
		"east":  imaging.Right,
		"west":  imaging.Left,
		"face":  imaging.Center,
		"":      imaging.Center,
	}
	for gravity, want := range cases {
		if got := anchorFor(gravity); got != want {
			t.Errorf("anchorFor(%q) = %v, want %v", gravity, got, want)
		}
	}
}
