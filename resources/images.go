package resources

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Image is a payload ready for the package.
type Image struct {
	Data          []byte
	Width, Height int
}

// prepare decodes data, downsizes it to fit maxDim pixels on its longer side
// and encodes it for the target extension. Source bytes already in the
// target format and within bounds are kept as they are.
func prepare(data []byte, ext string, maxDim int) (Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scaled := false
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		scale := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
		w = max(int(float64(w)*scale), 1)
		h = max(int(float64(h)*scale), 1)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
		scaled = true
	}
	if !scaled && format == ext {
		return Image{Data: data, Width: w, Height: h}, nil
	}

	var buf bytes.Buffer
	switch ext {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return Image{}, fmt.Errorf("encode %s: %w", ext, err)
	}
	return Image{Data: buf.Bytes(), Width: w, Height: h}, nil
}

// digest identifies caller-supplied bytes so identical payloads load once.
func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
