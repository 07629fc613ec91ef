package scan

import (
	"os"
	"sort"
	"strings"

	"github.com/John-Robertt/galmak/internal/domain"
)

// GalleryExts 是画廊页面直接引用的图片格式（浏览器可显示）。
var GalleryExts = []string{".jpeg", ".jpg", ".png", ".gif"}

// ListImages 列出 folder 下（不递归）扩展名属于 exts 的文件。
//
// 规则（硬约束）：
// - 扩展名比较不区分大小写；exts 本身应为小写且带 '.'
// - 目录一律跳过（即使名字像图片）
// - 结果按文件名字典序排列（按字节比较，与平台无关）
func ListImages(folder string, exts []string) ([]domain.ImageRef, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = struct{}{}
	}

	refs := make([]domain.ImageRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ref := domain.ImageRef{Folder: folder, Name: e.Name()}
		if _, ok := want[ref.LowerExt()]; !ok {
			continue
		}
		refs = append(refs, ref)
	}

	// os.ReadDir 已经按名排序；这里再显式排一次，把顺序约束写在调用点附近。
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// FirstSubdir 返回 dir 下字典序第一个非隐藏子目录的名字；没有则返回 ""。
func FirstSubdir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return names[0], nil
}
