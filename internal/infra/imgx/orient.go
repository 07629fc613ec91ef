package imgx

import (
	"image"
	"os"

	"github.com/disintegration/gift"
	"github.com/rwcarlsen/goexif/exif"
)

// readOrientation 读取 JPEG 的 EXIF Orientation；没有或读取失败返回 0。
func readOrientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil || meta == nil {
		return 0
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

// applyOrientation 按 EXIF Orientation（1..8）把图像摆正。
// 未知取值原样返回。
func applyOrientation(img image.Image, o int) image.Image {
	var f gift.Filter
	switch o {
	case 2:
		f = gift.FlipHorizontal()
	case 3:
		f = gift.Rotate180()
	case 4:
		f = gift.FlipVertical()
	case 5:
		f = gift.Transpose()
	case 6:
		f = gift.Rotate270() // 顺时针 90°
	case 7:
		f = gift.Transverse()
	case 8:
		f = gift.Rotate90() // 逆时针 90°
	default:
		return img
	}

	g := gift.New(f)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
