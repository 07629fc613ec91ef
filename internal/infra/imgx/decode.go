package imgx

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/gen2brain/go-fitz"
	"github.com/jdeng/goheif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Decode 是唯一的“安全加载”入口：按扩展名选择解码方式，任何失败都包装为 *DecodeError。
//
// - .pdf：只取第一页（渲染为位图）
// - .heic/.heif：HEIC 解码器
// - .webp：WebP 解码器
// - 其他：交给 image.Decode 按文件头识别（jpeg/png/gif/bmp/tiff/webp/heic）
//
// webp 与 goheif 在包初始化时各自向 image 注册一次格式，所以扩展名写错的
// HEIC/WebP（例如手机导出的 “.jpg” 实际是 HEIC）也能按文件头识别。
func (s Std) Decode(path string) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		img, err = decodePDFFirstPage(path)
	case ".heic", ".heif":
		img, err = decodeWith(path, goheif.Decode)
	case ".webp":
		img, err = decodeWith(path, webp.Decode)
	default:
		img, err = decodeAny(path)
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("图片尺寸无效")}
	}

	if s.AutoOrient && isJPEG(path) {
		if o := readOrientation(path); o > 1 {
			img = applyOrientation(img, o)
		}
	}
	return img, nil
}

func decodeWith(path string, dec func(r io.Reader) (image.Image, error)) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dec(f)
}

func decodeAny(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func decodePDFFirstPage(path string) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	if doc.NumPage() < 1 {
		return nil, errors.New("PDF 没有页面")
	}
	img, err := doc.Image(0)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func isJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
