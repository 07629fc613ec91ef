package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/galmak/internal/app/run"
	"github.com/John-Robertt/galmak/internal/config"
	"github.com/John-Robertt/galmak/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 把 run 层事件打印为逐行文本。
//
// 预处理开启多个 worker 时事件来自多个 goroutine，所有输出都在 mu 下完成，
// 保证每一行完整。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()

	if eff.PhotosFolderDefaulted {
		fmt.Fprintf(p.w, "未指定 photos_folder，使用 %s。\n", eff.PhotosFolder)
	}
	if eff.ConfigFile != "" {
		fmt.Fprintf(p.w, "配置文件：%s\n", eff.ConfigFile)
	}
	if !eff.Process {
		return
	}

	pp := eff.Preprocess
	fmt.Fprintln(p.w, "预处理（生效）:")
	fmt.Fprintf(p.w, "  from_ext: %s\n", strings.Join(pp.SourceExts, " "))
	fmt.Fprintf(p.w, "  max_size: %s\n", orNone(pp.MaxSize > 0, fmt.Sprint(pp.MaxSize)))
	fmt.Fprintf(p.w, "  to_ext: %s\n", orNone(pp.TargetExt != "", pp.TargetExt))
	fmt.Fprintf(p.w, "  name_as: %s\n", orNone(pp.NameAs != "", pp.NameAs))
	fmt.Fprintf(p.w, "  workers: %d resample: %s auto_orient: %s jpeg_quality: %d\n",
		pp.Workers, eff.Resample, onOff(eff.AutoOrient), eff.JPEGQuality,
	)
}

func (p *progressUI) OnBatchStart(in, out string, exts []string, names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "处理 %s 中的图片，保存到 %s（%d 个文件）。\n", in, out, len(names))
}

func (p *progressUI) OnItemDone(done, total int, res domain.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range res.Attempts {
		mode := "原样"
		if a.RGB {
			mode = "RGB"
		}
		if a.Err != "" {
			fmt.Fprintf(p.w, "  %s 第 %d 步 保存 %s (%s) 失败：%s\n",
				res.Src, a.Step, a.Path, mode, truncate(a.Err, 160),
			)
		}
	}

	switch res.Status {
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s SKIP %s: %s\n",
			done, total, res.Src, res.ErrorCode, truncate(res.ErrorMsg, 160),
		)
	case domain.StatusFallback:
		fmt.Fprintf(p.w, "[%d/%d] %s -> %s FALLBACK %s%s%s\n",
			done, total, res.Src, res.Dst, formatSize(res), formatExtChange(res), formatOverwrite(res),
		)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s -> %s OK %s%s\n",
			done, total, res.Src, res.Dst, formatSize(res), formatOverwrite(res),
		)
	}
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "preprocess":
		fmt.Fprintf(p.w, "预处理完成: total=%d saved=%d fallback=%d skipped=%d (%s)\n",
			intField(fields, "total"),
			intField(fields, "saved"),
			intField(fields, "fallback"),
			intField(fields, "skipped"),
			formatShortDuration(dur),
		)
	case "gallery":
		if intField(fields, "images") == 0 {
			fmt.Fprintf(p.w, "%v 中没有找到图片。\n", fields["folder"])
			return
		}
		fmt.Fprintf(p.w, "由 %v 生成画廊: images=%d columns=%s (%s)\n",
			fields["folder"], intField(fields, "images"), formatInts(fields["columns"]), formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

// Finish 打印产物位置。
func (p *progressUI) Finish(rep run.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rep.NoImages {
		return
	}
	fmt.Fprintf(p.w, "gallery: %s\n", rep.Gallery.Path)
	if !p.startedAt.IsZero() {
		fmt.Fprintf(p.w, "完成 (%s)\n", formatShortDuration(time.Since(p.startedAt)))
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func orNone(ok bool, s string) string {
	if !ok {
		return "-"
	}
	return s
}

func formatSize(res domain.FileResult) string {
	if res.SrcW == res.DstW && res.SrcH == res.DstH {
		return fmt.Sprintf("%dx%d", res.DstW, res.DstH)
	}
	return fmt.Sprintf("%dx%d->%dx%d", res.SrcW, res.SrcH, res.DstW, res.DstH)
}

// formatExtChange 说明回退后扩展名发生的变化，例如 " (.bmp -> .jpg)"。
func formatExtChange(res domain.FileResult) string {
	got := ""
	if i := strings.LastIndex(res.Dst, "."); i >= 0 {
		got = res.Dst[i:]
	}
	if res.ExtTo == "" || got == "" || got == res.ExtTo {
		return ""
	}
	return " (" + res.ExtTo + " -> " + got + ")"
}

func formatOverwrite(res domain.FileResult) string {
	if res.Overwrites == "" {
		return ""
	}
	return " (覆盖 " + res.Overwrites + " 的输出)"
}

func formatInts(v any) string {
	xs, ok := v.([]int)
	if !ok || len(xs) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(xs))
	for _, x := range xs {
		parts = append(parts, fmt.Sprint(x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max - 3
	if max <= 3 {
		cut = max
	}
	// 只在 rune 边界截断，避免切开多字节的中文。
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if max <= 3 {
		return s[:cut]
	}
	return s[:cut] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
