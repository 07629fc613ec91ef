package imgx

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// FitLongSide 计算把较长边缩放到 maxSide 后的尺寸（等比，四舍五入，至少 1 像素）。
// 较短的图片同样会被放大到 maxSide。
func FitLongSide(w, h, maxSide int) (int, int) {
	long := w
	if h > long {
		long = h
	}
	if long <= 0 || maxSide <= 0 {
		return w, h
	}
	s := float64(maxSide) / float64(long)
	return atLeastOne(int(math.Round(float64(w) * s))), atLeastOne(int(math.Round(float64(h) * s)))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Resize 把 img 缩放到 w x h。输出总是 *image.RGBA（lanczos 时由 nfnt/resize 决定具体类型）。
func (s Std) Resize(img image.Image, w, h int) image.Image {
	switch s.Resample {
	case ResampleLanczos:
		return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	case ResampleBilinear:
		return scale(img, w, h, draw.ApproxBiLinear)
	default:
		return scale(img, w, h, draw.CatmullRom)
	}
}

func scale(img image.Image, w, h int, k draw.Interpolator) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	k.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToRGB 丢弃 alpha/调色板，得到不透明的 3 通道图像。
//
// 与“合成到背景色”不同：这里保留每个像素（去预乘后的）RGB 值，只把 alpha 置为不透明。
func (s Std) ToRGB(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}

// HasAlpha 报告图像是否包含非不透明像素，或是调色板图像（二者都被 JPEG 拒绝）。
func HasAlpha(img image.Image) bool {
	if _, ok := img.(*image.Paletted); ok {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
