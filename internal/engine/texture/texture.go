// Package texture decodes PNG images and uploads them as OpenGL textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
)

// Decode decodes PNG data into an RGBA image.
func Decode(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image.Image to *image.RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			r16, g16, b16, a16 := c.RGBA()
			rgba.SetRGBA(x, y, color.RGBA{
				R: uint8(r16 >> 8),
				G: uint8(g16 >> 8),
				B: uint8(b16 >> 8),
				A: uint8(a16 >> 8),
			})
		}
	}

	return rgba
}

// Upload copies the image into a new 2D texture with linear min/mag
// filtering and returns its handle. Texture unit 0 becomes active and the
// new texture is left bound; callers must not rely on previous binding
// state surviving the call.
func Upload(img *image.RGBA) uint32 {
	var tex uint32
	gl.ActiveTexture(gl.TEXTURE0)
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	return tex
}

// Read loads a texture file from disk and uploads it. On any failure it
// logs the error and returns 0 so the caller can keep loading the rest of
// the model.
func Read(path string) uint32 {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("reading texture", zap.String("path", path), zap.Error(err))
		return 0
	}

	img, err := Decode(data)
	if err != nil {
		logger.Error("decoding texture", zap.String("path", path), zap.Error(err))
		return 0
	}

	logger.Info("texture loaded",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	return Upload(img)
}
