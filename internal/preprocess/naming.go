package preprocess

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLossyExt 是级联第 3 步以及 pdf/heic 默认转换使用的格式。
	DefaultLossyExt = ".jpg"
	// DefaultLosslessExt 是级联第 4 步使用的格式。
	DefaultLosslessExt = ".png"
)

// SeqName 生成重命名后的文件名（不含扩展名）。
// 序号补零宽度等于 total 的位数：total=5 -> "img0"，total=150 -> "img000"。
func SeqName(template string, idx, total int) string {
	width := len(strconv.Itoa(total))
	return fmt.Sprintf("%s%0*d", template, width, idx)
}

// OutputExt 决定输出扩展名：显式指定的 target 优先；否则沿用原扩展名，
// 但 pdf/heic/heif 无法按原格式保存，改为 DefaultLossyExt。
func OutputExt(orig, target string) string {
	if target != "" {
		return target
	}
	switch strings.ToLower(orig) {
	case ".pdf", ".heic", ".heif":
		return DefaultLossyExt
	default:
		return orig
	}
}
