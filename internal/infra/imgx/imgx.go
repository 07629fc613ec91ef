package imgx

import (
	"errors"
	"fmt"
	"image"
)

// Codec 是预处理流程依赖的图片编解码能力。
//
// 约束：
// - Decode/Encode 失败必须返回 *DecodeError / *EncodeError，调用方据此决定“跳过”还是“回退”
// - Resize/ToRGB 是纯函数：不修改输入图像
type Codec interface {
	Decode(path string) (image.Image, error)
	Resize(img image.Image, w, h int) image.Image
	ToRGB(img image.Image) image.Image
	Encode(img image.Image, path string) error
}

const (
	ResampleCatmullRom = "catmullrom"
	ResampleBilinear   = "bilinear"
	ResampleLanczos    = "lanczos"
)

// DefaultJPEGQuality 与常见图片库的“高质量”默认值一致。
const DefaultJPEGQuality = 95

var (
	// ErrUnsupportedFormat 表示扩展名没有对应的编码器/解码器。
	ErrUnsupportedFormat = errors.New("不支持的图片格式")
	// ErrAlphaUnsupported 表示目标格式无法保存 alpha 通道或调色板图像。
	ErrAlphaUnsupported = errors.New("目标格式不支持 alpha/调色板")
)

// DecodeError 表示读取/解码单个图片失败。
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("解码失败 %q：%v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError 表示以某种格式编码/写出单个图片失败。
type EncodeError struct {
	Path   string
	Format string // 小写扩展名，例如 ".jpg"
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("保存失败 %q（%s）：%v", e.Path, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Std 是基于标准库 + golang.org/x/image + 少量第三方解码器的 Codec 实现。
type Std struct {
	Resample    string // catmullrom（默认）/ bilinear / lanczos
	JPEGQuality int    // 1..100；0 表示 DefaultJPEGQuality
	AutoOrient  bool   // 按 EXIF Orientation 摆正 JPEG
}

var _ Codec = Std{}

func (s Std) jpegQuality() int {
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return DefaultJPEGQuality
	}
	return s.JPEGQuality
}
