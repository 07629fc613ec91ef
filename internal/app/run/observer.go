package run

import (
	"time"

	"github.com/John-Robertt/galmak/internal/config"
	"github.com/John-Robertt/galmak/internal/preprocess"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出。
// - Observer 的实现必须并发安全：预处理的条目事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)

	preprocess.Observer
}
