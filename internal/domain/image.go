package domain

import (
	"path/filepath"
	"strings"
)

// ImageRef 描述一次目录扫描得到的图片文件（只做 ReadDir，不读内容）。
//
// 不变量：
// - 一批 ImageRef 总是按 Name 字典序排列；列分配与重命名序号都依赖这个顺序
// - Ext 保留文件名里的原始大小写（".JPG"），比较时一律用 LowerExt
type ImageRef struct {
	Folder string
	Name   string // 含扩展名
}

// Path 返回图片在磁盘上的路径。
func (r ImageRef) Path() string {
	return filepath.Join(r.Folder, r.Name)
}

// Base 返回去掉扩展名的文件名。
func (r ImageRef) Base() string {
	return strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
}

// Ext 返回原始扩展名（含 '.'）。
func (r ImageRef) Ext() string {
	return filepath.Ext(r.Name)
}

// LowerExt 返回小写扩展名，用于格式判断。
func (r ImageRef) LowerExt() string {
	return strings.ToLower(filepath.Ext(r.Name))
}

// NormalizeExt 把用户输入的扩展名规范为 ".xxx" 形式，大小写保持不变。
// 空串保持为空（表示“未指定”）。
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
