package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/John-Robertt/galmak/internal/config"
	"github.com/John-Robertt/galmak/internal/domain"
	"github.com/John-Robertt/galmak/internal/gallery"
	"github.com/John-Robertt/galmak/internal/infra/fsx"
	"github.com/John-Robertt/galmak/internal/infra/imgx"
	"github.com/John-Robertt/galmak/internal/preprocess"
)

// ProcessedDirName 是预处理输出目录的固定名称。
const ProcessedDirName = "_processed_"

// ErrProcessedExists 表示需要预处理但 _processed_ 已存在；为避免覆盖旧产物直接中止。
var ErrProcessedExists = errors.New("预处理输出目录已存在")

// Report 汇总一次运行的结果。
type Report struct {
	// PhotosFolder 是最终用于生成画廊的目录（预处理时为 _processed_）。
	PhotosFolder string

	// Processed 仅在开启预处理时非 nil。
	Processed *domain.ProcessReport

	Gallery gallery.Result
	// NoImages 表示目录中没有可用图片：未写任何文档，但不算失败。
	NoImages bool
}

// Execute 按配置执行一次完整运行：可选的预处理，然后生成画廊。
//
// 致命错误（返回 error）：_processed_ 已存在、输出目录缺失、写文档失败。
// 单个图片的失败只记录在 Report.Processed 中。
func Execute(ctx context.Context, eff config.EffectiveConfig, obs Observer) (Report, error) {
	if obs != nil {
		obs.OnStart(eff)
	}

	rep := Report{PhotosFolder: eff.PhotosFolder}

	if eff.Process {
		out, pr, err := process(ctx, eff, obs)
		if err != nil {
			return rep, err
		}
		rep.Processed = &pr
		rep.PhotosFolder = out
	}

	started := time.Now()
	res, err := gallery.Make(rep.PhotosFolder, eff.Gallery)
	if err != nil {
		if errors.Is(err, gallery.ErrNoImages) {
			rep.NoImages = true
			if obs != nil {
				obs.OnPhaseDone("gallery", map[string]any{
					"folder": rep.PhotosFolder,
					"images": 0,
				}, time.Since(started))
			}
			return rep, nil
		}
		return rep, err
	}
	rep.Gallery = res

	if obs != nil {
		obs.OnPhaseDone("gallery", map[string]any{
			"folder":  rep.PhotosFolder,
			"images":  res.Images,
			"columns": res.Columns,
			"path":    res.Path,
		}, time.Since(started))
	}
	return rep, nil
}

// ProcessedDir 返回 photosFolder 对应的 _processed_ 位置：
// 与图片目录同级；若图片目录带末尾分隔符，则位于其内部。
func ProcessedDir(photosFolder string) string {
	dir, _ := gallery.SplitFolder(photosFolder)
	return filepath.Join(dir, ProcessedDirName)
}

func process(ctx context.Context, eff config.EffectiveConfig, obs Observer) (string, domain.ProcessReport, error) {
	out := ProcessedDir(eff.PhotosFolder)

	// 先创建输出目录：已存在则在读取任何图片之前中止。
	if err := fsx.MkdirNew(out); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", domain.ProcessReport{}, fmt.Errorf("%w：%s", ErrProcessedExists, out)
		}
		if fsx.IsPathTypeConflict(err) {
			return "", domain.ProcessReport{}, fmt.Errorf("%w：%v", ErrProcessedExists, err)
		}
		return "", domain.ProcessReport{}, fmt.Errorf("创建 %s 失败：%w", out, err)
	}

	codec := imgx.Std{
		Resample:    eff.Resample,
		JPEGQuality: eff.JPEGQuality,
		AutoOrient:  eff.AutoOrient,
	}

	var pobs preprocess.Observer
	if obs != nil {
		pobs = obs
	}

	started := time.Now()
	pr, err := preprocess.Run(ctx, eff.PhotosFolder, out, eff.Preprocess, codec, pobs)
	if err != nil {
		return "", pr, err
	}

	if obs != nil {
		obs.OnPhaseDone("preprocess", map[string]any{
			"output":   out,
			"total":    pr.Summary.Total,
			"saved":    pr.Summary.Saved,
			"fallback": pr.Summary.Fallback,
			"skipped":  pr.Summary.Skipped,
		}, time.Since(started))
	}
	return out, pr, nil
}
