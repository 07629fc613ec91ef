package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/galmak/internal/domain"
	"github.com/John-Robertt/galmak/internal/infra/fsx"
	"github.com/John-Robertt/galmak/internal/infra/imgx"
	"github.com/John-Robertt/galmak/internal/scan"
)

// ErrOutputFolderMissing 表示输出目录在开始时不存在（致命前置条件，只检查一次）。
var ErrOutputFolderMissing = errors.New("输出目录不存在")

// MaxWorkers 是并发上限；与扫描规模相比已足够。
const MaxWorkers = 32

// Config 描述一次预处理批次。
type Config struct {
	MaxSize    int      // 0 表示不缩放
	SourceExts []string // 小写、带 '.'
	TargetExt  string   // "" 表示沿用原扩展名（pdf/heic 例外）
	NameAs     string   // "" 表示保留原文件名
	Workers    int      // <=1 表示串行
}

// DefaultSourceExts 返回默认的输入扩展名集合（每次返回新切片）。
func DefaultSourceExts() []string {
	return append([]string(nil), scan.GalleryExts...)
}

// Observer 接收预处理过程中的事件；preprocess 包自身从不输出。
//
// Workers>1 时事件来自多个 goroutine，实现必须并发安全。
type Observer interface {
	OnBatchStart(in, out string, exts []string, names []string)
	OnItemDone(done, total int, res domain.FileResult)
}

// Run 处理 in 目录下所有匹配 SourceExts 的图片，结果写入 out。
//
// 约束：
// - out 必须已存在，否则返回 ErrOutputFolderMissing，什么也不做
// - 单个文件的任何失败都只影响它自己（记录在 FileResult 中），批次继续
// - 重命名序号与 report 顺序始终按输入文件名字典序，与完成顺序无关
func Run(ctx context.Context, in, out string, cfg Config, codec imgx.Codec, obs Observer) (domain.ProcessReport, error) {
	if !fsx.IsDir(out) {
		return domain.ProcessReport{}, fmt.Errorf("%w：%s", ErrOutputFolderMissing, out)
	}

	exts := cfg.SourceExts
	if len(exts) == 0 {
		exts = DefaultSourceExts()
	}

	refs, err := scan.ListImages(in, exts)
	if err != nil {
		return domain.ProcessReport{}, err
	}

	rr := domain.ProcessReport{
		Input:     in,
		Output:    out,
		StartedAt: time.Now(),
		Items:     make([]domain.FileResult, len(refs)),
	}

	if obs != nil {
		names := make([]string, 0, len(refs))
		for _, r := range refs {
			names = append(names, r.Name)
		}
		obs.OnBatchStart(in, out, exts, names)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	var (
		g    errgroup.Group
		done atomic.Int64
	)
	g.SetLimit(workers)

	total := len(refs)
	for _, group := range groupByOutputName(refs, cfg.NameAs) {
		if err := ctx.Err(); err != nil {
			break
		}
		group := group
		g.Go(func() error {
			// 同组的输入会写出同名文件，必须按字典序串行，后者覆盖前者。
			written := make(map[string]string, len(group))
			for _, i := range group {
				res := processOne(refs[i], i, total, out, cfg, codec)
				if res.Dst != "" {
					res.Overwrites = written[res.Dst]
					written[res.Dst] = res.Src
				}
				rr.Items[i] = res
				n := done.Add(1)
				if obs != nil {
					obs.OnItemDone(int(n), total, res)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	rr.FinishedAt = time.Now()
	rr.Finalize()
	if err := ctx.Err(); err != nil {
		return rr, err
	}
	return rr, nil
}

// processOne 完成单个文件的 加载 -> 缩放 -> 命名 -> 保存。
// 解码后的图像只属于这一次调用，返回前即可回收。
func processOne(ref domain.ImageRef, idx, total int, out string, cfg Config, codec imgx.Codec) domain.FileResult {
	res := domain.FileResult{
		Index:   idx,
		Src:     ref.Name,
		ExtFrom: ref.Ext(),
	}

	img, err := codec.Decode(ref.Path())
	if err != nil {
		res.Status = domain.StatusSkipped
		res.ErrorCode = domain.ErrCodeDecodeFailed
		res.ErrorMsg = err.Error()
		return res
	}

	b := img.Bounds()
	res.SrcW, res.SrcH = b.Dx(), b.Dy()
	res.DstW, res.DstH = res.SrcW, res.SrcH
	if cfg.MaxSize > 0 {
		w, h := imgx.FitLongSide(res.SrcW, res.SrcH, cfg.MaxSize)
		img = codec.Resize(img, w, h)
		res.DstW, res.DstH = w, h
	}

	name := outputBase(ref, idx, total, cfg.NameAs)
	res.Renamed = cfg.NameAs != ""

	ext := OutputExt(ref.Ext(), cfg.TargetExt)
	res.ExtTo = ext

	final, attempts, err := SaveWithFallback(codec, img, filepath.Join(out, name), ext)
	res.Attempts = attempts
	if err != nil {
		res.Status = domain.StatusSkipped
		res.ErrorCode = domain.ErrCodeSaveFailed
		res.ErrorMsg = err.Error()
		return res
	}

	res.Dst = filepath.Base(final)
	res.Status = domain.StatusSaved
	if !strings.HasSuffix(final, ext) {
		res.Status = domain.StatusFallback
	}
	return res
}

// outputBase 返回输出文件名（不含扩展名）。
func outputBase(ref domain.ImageRef, idx, total int, nameAs string) string {
	if nameAs != "" {
		return SeqName(nameAs, idx, total)
	}
	return ref.Base()
}

// groupByOutputName 把输出文件名（不含扩展名，忽略大小写）相同的输入下标分到同一组。
// 回退保存只改扩展名，所以基名不同的输入永远不会写到同一个文件。
// 组内与组间都保持 refs 的顺序。
func groupByOutputName(refs []domain.ImageRef, nameAs string) [][]int {
	total := len(refs)
	var groups [][]int
	at := make(map[string]int, total)
	for i, r := range refs {
		key := strings.ToLower(outputBase(r, i, total, nameAs))
		if j, ok := at[key]; ok {
			groups[j] = append(groups[j], i)
			continue
		}
		at[key] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}
