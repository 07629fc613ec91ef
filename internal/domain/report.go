package domain

import "time"

const (
	// StatusSaved：按请求的扩展名保存成功（级联第 1 或第 2 步）。
	StatusSaved = "saved"
	// StatusFallback：换了格式才保存成功（级联第 3 或第 4 步），文件名已变化。
	StatusFallback = "fallback"
	// StatusSkipped：解码失败或级联全部失败，该文件被跳过。
	StatusSkipped = "skipped"
)

const (
	ErrCodeDecodeFailed = "decode_failed"
	ErrCodeSaveFailed   = "save_failed"
)

// SaveAttempt 记录级联保存中的一次尝试。
type SaveAttempt struct {
	Step int    // 1..4
	Path string // 本次尝试写入的完整路径
	RGB  bool   // 是否先转换为 3 通道
	Err  string // 成功时为空
}

// FileResult 是单个输入文件的处理结果。
type FileResult struct {
	Index int    // 在排序后批次里的序号（也是重命名序号）
	Src   string // 输入文件名
	Dst   string // 最终写出的文件名；跳过时为空

	Status    string
	ErrorCode string
	ErrorMsg  string

	// 尺寸：缩放前与缩放后；未缩放时二者相同。
	SrcW, SrcH int
	DstW, DstH int

	Renamed  bool
	ExtFrom  string
	ExtTo    string
	Attempts []SaveAttempt

	// Overwrites 非空时表示本次写出覆盖了同一批次中更早输入（按字典序）的输出。
	Overwrites string
}

// ProcessReport 汇总一次预处理批次。
type ProcessReport struct {
	Input  string
	Output string

	StartedAt  time.Time
	FinishedAt time.Time

	Summary ProcessSummary
	Items   []FileResult
}

type ProcessSummary struct {
	Total    int
	Saved    int
	Fallback int
	Skipped  int
}

// Finalize 统一时间为 UTC，并由 items 计算 summary。
// Items 在构造时已经按 Index 放置，这里不再排序。
func (r *ProcessReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	s := ProcessSummary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case StatusSaved:
			s.Saved++
		case StatusFallback:
			s.Fallback++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}
