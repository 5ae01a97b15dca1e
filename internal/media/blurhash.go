// Package media computes BlurHash placeholders for game background images.
package media

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the longest thumbnail edge used for encoding. BlurHash is a
// low-frequency placeholder, so a 64px thumbnail encodes the same as the original.
const blurHashSize = 64

// Wide backgrounds get more horizontal components.
const (
	xComponents = 5
	yComponents = 3
)

// Placeholder is the BlurHash and the size of the source image.
type Placeholder struct {
	BlurHash string `json:"blurhash"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ComputePlaceholder decodes an image and encodes its BlurHash.
func ComputePlaceholder(r io.Reader) (*Placeholder, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(xComponents, yComponents, resizeForBlurHash(img))
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}

	b := img.Bounds()
	return &Placeholder{BlurHash: hash, Width: b.Dx(), Height: b.Dy()}, nil
}

// resizeForBlurHash scales img with nearest-neighbour sampling so its longest
// edge is blurHashSize, keeping the aspect ratio.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	dstWidth, dstHeight := blurHashSize, blurHashSize
	if srcWidth > srcHeight {
		dstHeight = max(1, srcHeight*blurHashSize/srcWidth)
	} else {
		dstWidth = max(1, srcWidth*blurHashSize/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := range dstHeight {
		for x := range dstWidth {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
