package gallery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/galmak/internal/infra/fsx"
	"github.com/John-Robertt/galmak/internal/scan"
)

// ErrNoImages 表示图片目录里没有可用于画廊的文件；此时不写任何文件。
var ErrNoImages = errors.New("未找到图片")

// Result 描述一次成功的画廊生成。
type Result struct {
	Path    string // 写出的 HTML 文件路径
	Images  int
	Columns []int
}

// SplitFolder 按“末尾分隔符”约定拆分图片目录。
//
//   - "a/photos"  -> dir="a",        prefix="photos"（文档写在上一级）
//   - "a/photos/" -> dir="a/photos", prefix=""      （文档写在目录里面）
func SplitFolder(folder string) (dir, prefix string) {
	if hasTrailingSep(folder) {
		dir = strings.TrimRight(folder, `/`+string(filepath.Separator))
		if dir == "" {
			dir = string(filepath.Separator)
		}
		return dir, ""
	}
	clean := filepath.Clean(folder)
	return filepath.Dir(clean), filepath.Base(clean)
}

func hasTrailingSep(p string) bool {
	return strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator))
}

// Make 扫描 photosFolder 并写出画廊文档。
//
// 约束：
// - 只识别 .jpeg/.jpg/.png/.gif（不区分大小写）
// - 没有图片：返回 ErrNoImages，不写文件
// - 不创建目录；同名文档已存在则原子替换
func Make(photosFolder string, cfg Config) (Result, error) {
	if strings.TrimSpace(cfg.Filename) == "" {
		return Result{}, fmt.Errorf("文件名不能为空")
	}
	if strings.ContainsAny(cfg.Filename, `/`+string(filepath.Separator)) {
		return Result{}, fmt.Errorf("文件名不能包含路径：%q", cfg.Filename)
	}
	if _, err := splitClass(cfg.Columns); err != nil {
		return Result{}, err
	}

	refs, err := scan.ListImages(photosFolder, scan.GalleryExts)
	if err != nil {
		return Result{}, err
	}
	if len(refs) == 0 {
		return Result{}, fmt.Errorf("%w：%s", ErrNoImages, photosFolder)
	}

	dir, prefix := SplitFolder(photosFolder)
	doc, err := Build(refs, prefix, cfg)
	if err != nil {
		return Result{}, err
	}

	if err := fsx.WriteFileAtomicReplace(dir, cfg.Filename, doc.Bytes()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("输出目录不存在：%q", dir)
		}
		return Result{}, err
	}

	sizes, _ := ColumnSizes(len(refs), cfg.Columns)
	return Result{
		Path:    filepath.Join(dir, cfg.Filename),
		Images:  len(refs),
		Columns: sizes,
	}, nil
}
