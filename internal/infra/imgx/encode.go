package imgx

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/John-Robertt/galmak/internal/infra/fsx"
)

// Encode 按 path 的扩展名编码并原子写出。失败时不会留下半截文件。
//
// JPEG 与常见图片库的行为保持一致：拒绝带 alpha 或调色板的图像（ErrAlphaUnsupported），
// 由调用方决定是否先 ToRGB 再重试。
func (s Std) Encode(img image.Image, path string) error {
	format := strings.ToLower(filepath.Ext(path))

	var buf bytes.Buffer
	if err := s.encodeTo(&buf, img, format); err != nil {
		return &EncodeError{Path: path, Format: format, Err: err}
	}

	if err := fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), buf.Bytes()); err != nil {
		return &EncodeError{Path: path, Format: format, Err: err}
	}
	return nil
}

func (s Std) encodeTo(buf *bytes.Buffer, img image.Image, format string) error {
	switch format {
	case ".jpg", ".jpeg":
		if HasAlpha(img) {
			return ErrAlphaUnsupported
		}
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: s.jpegQuality()})
	case ".png":
		return png.Encode(buf, img)
	case ".gif":
		return gif.Encode(buf, img, nil)
	case ".bmp":
		return bmp.Encode(buf, img)
	case ".tif", ".tiff":
		return tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	case ".webp":
		return webp.Encode(buf, img, &webp.Options{Quality: float32(s.jpegQuality())})
	default:
		return ErrUnsupportedFormat
	}
}
