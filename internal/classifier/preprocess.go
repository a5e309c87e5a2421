package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// InputSize is the square edge, in pixels, the model expects.
const InputSize = 224

// ErrInvalidImage is returned when the bytes do not decode to a raster image.
var ErrInvalidImage = errors.New("invalid image")

// ImageNet channel statistics the backbone was trained with.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess decodes data and returns a normalized NCHW float32 tensor of
// shape [1, 3, InputSize, InputSize].
func Preprocess(data []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bounds", ErrInvalidImage)
	}

	resized := resize.Resize(InputSize, InputSize, toRGB(img), resize.Bilinear)
	return toTensor(resized), nil
}

// toRGB copies img into an opaque NRGBA buffer. Alpha is discarded, not composited.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func toTensor(img image.Image) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)

	set := func(x, y int, r, g, bl uint8) {
		i := y*w + x
		out[i] = (float32(r)/255 - channelMean[0]) / channelStd[0]
		out[plane+i] = (float32(g)/255 - channelMean[1]) / channelStd[1]
		out[2*plane+i] = (float32(bl)/255 - channelMean[2]) / channelStd[2]
	}

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				set(x, y, src.Pix[p], src.Pix[p+1], src.Pix[p+2])
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				set(x, y, src.Pix[p], src.Pix[p+1], src.Pix[p+2])
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				set(x, y, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}

	return out
}
