package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{G: 255, A: 255})
	src.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	src.SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 128})

	img, err := Decode(encodePNG(t, src))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("expected 2x2 image, got %v", img.Bounds())
	}
	got := img.RGBAAt(0, 0)
	if got.R != 255 || got.G != 0 || got.B != 0 || got.A != 255 {
		t.Errorf("unexpected pixel (0,0): %+v", got)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a png at all")},
		{"truncated", encodePNG(t, image.NewRGBA(image.Rect(0, 0, 8, 8)))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err == nil {
				t.Error("expected decode error, got nil")
			}
		})
	}
}

func TestToRGBA(t *testing.T) {
	// Paletted source exercises the conversion loop.
	pal := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.RGBA{R: 10, G: 20, B: 30, A: 255},
		color.RGBA{R: 200, G: 100, B: 50, A: 255},
	})
	pal.SetColorIndex(0, 0, 0)
	pal.SetColorIndex(1, 0, 1)

	rgba := ToRGBA(pal)
	if got := rgba.RGBAAt(1, 0); got.R != 200 || got.G != 100 || got.B != 50 {
		t.Errorf("unexpected converted pixel: %+v", got)
	}
}

func TestToRGBAPassthrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if ToRGBA(src) != src {
		t.Error("expected RGBA input to pass through unchanged")
	}
}
