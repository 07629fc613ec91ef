package run

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/galmak/internal/config"
	"github.com/John-Robertt/galmak/internal/domain"
)

type recordObserver struct {
	mu     sync.Mutex
	starts int
	phases []string
	items  int
}

func (o *recordObserver) OnStart(config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts++
}

func (o *recordObserver) OnPhaseDone(name string, _ map[string]any, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnBatchStart(string, string, []string, []string) {}

func (o *recordObserver) OnItemDone(int, int, domain.FileResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items++
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建文件失败：%v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("编码 png 失败：%v", err)
	}
}

// newWorkspace 创建 <cwd>/photos，并放入 n 张小图。
func newWorkspace(t *testing.T, n int) (cwd, photos string) {
	t.Helper()
	cwd = t.TempDir()
	photos = filepath.Join(cwd, "photos")
	if err := os.MkdirAll(photos, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	for i := 0; i < n; i++ {
		writePNG(t, filepath.Join(photos, string(rune('a'+i))+".png"), 8, 6)
	}
	return cwd, photos
}

func load(t *testing.T, cwd string, cli config.CLIArgs) config.EffectiveConfig {
	t.Helper()
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		t.Fatalf("加载配置失败：%v", err)
	}
	return eff
}

func TestExecute_NoProcessingFlags_NoProcessedDir(t *testing.T) {
	cwd, _ := newWorkspace(t, 3)
	obs := &recordObserver{}

	rep, err := Execute(context.Background(), load(t, cwd, config.CLIArgs{}), obs)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rep.Processed != nil {
		t.Fatalf("不应执行预处理")
	}
	if _, err := os.Stat(filepath.Join(cwd, ProcessedDirName)); !os.IsNotExist(err) {
		t.Fatalf("不应创建 %s，stat err=%v", ProcessedDirName, err)
	}
	if rep.Gallery.Path != filepath.Join(cwd, "gallery.html") || rep.Gallery.Images != 3 {
		t.Fatalf("画廊结果不正确：%+v", rep.Gallery)
	}
	if obs.starts != 1 || strings.Join(obs.phases, ",") != "gallery" {
		t.Fatalf("observer 事件不正确：%+v", obs)
	}
}

func TestExecute_AnyProcessingFlag_CreatesProcessedDir(t *testing.T) {
	cases := []struct {
		name string
		cli  config.CLIArgs
	}{
		{name: "from_ext", cli: config.CLIArgs{FromExt: []string{".png"}, FromExtSet: true}},
		{name: "max_size", cli: config.CLIArgs{MaxSize: 4, MaxSizeSet: true}},
		{name: "to_ext", cli: config.CLIArgs{ToExt: ".jpg", ToExtSet: true}},
		{name: "name_as", cli: config.CLIArgs{NameAs: "img", NameAsSet: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cwd, _ := newWorkspace(t, 2)
			obs := &recordObserver{}

			rep, err := Execute(context.Background(), load(t, cwd, tc.cli), obs)
			if err != nil {
				t.Fatalf("不期望错误：%v", err)
			}
			out := filepath.Join(cwd, ProcessedDirName)
			entries, err := os.ReadDir(out)
			if err != nil {
				t.Fatalf("期望创建 %s：%v", out, err)
			}
			if len(entries) != 2 || rep.Processed.Summary.Total != 2 || obs.items != 2 {
				t.Fatalf("预处理结果不正确：entries=%d report=%+v", len(entries), rep.Processed.Summary)
			}
			if rep.PhotosFolder != out {
				t.Fatalf("画廊应基于 %s 生成，实际 %q", out, rep.PhotosFolder)
			}
			if strings.Join(obs.phases, ",") != "preprocess,gallery" {
				t.Fatalf("阶段顺序不正确：%v", obs.phases)
			}
		})
	}
}

func TestExecute_ProcessedDirExists_Aborts(t *testing.T) {
	cwd, _ := newWorkspace(t, 2)
	out := filepath.Join(cwd, ProcessedDirName)
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	_, err := Execute(context.Background(), load(t, cwd, config.CLIArgs{MaxSize: 4, MaxSizeSet: true}), nil)
	if !errors.Is(err, ErrProcessedExists) {
		t.Fatalf("期望 ErrProcessedExists，实际：%v", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("中止时不应写入任何文件")
	}
	if _, err := os.Stat(filepath.Join(cwd, "gallery.html")); !os.IsNotExist(err) {
		t.Fatalf("中止时不应生成画廊")
	}
}

func TestExecute_RenameResizeAndGalleryFromProcessed(t *testing.T) {
	cwd, _ := newWorkspace(t, 3)

	rep, err := Execute(context.Background(), load(t, cwd, config.CLIArgs{
		NameAs: "img", NameAsSet: true,
		MaxSize: 4, MaxSizeSet: true,
		ToExt: "jpg", ToExtSet: true,
	}), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	for i, it := range rep.Processed.Items {
		if it.Status != domain.StatusSaved || it.DstW != 4 || it.DstH != 3 {
			t.Fatalf("第 %d 项结果不正确：%+v", i, it)
		}
	}

	b, err := os.ReadFile(filepath.Join(cwd, "gallery.html"))
	if err != nil {
		t.Fatalf("读取画廊失败：%v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	if err != nil {
		t.Fatalf("解析 HTML 失败：%v", err)
	}
	var srcs []string
	doc.Find("img[src^='_processed_/']").Each(func(_ int, s *goquery.Selection) {
		srcs = append(srcs, s.AttrOr("src", ""))
	})
	if strings.Join(srcs, ",") != "_processed_/img0.jpg,_processed_/img1.jpg,_processed_/img2.jpg" {
		t.Fatalf("画廊图片不正确：%v", srcs)
	}
}

func TestExecute_TrailingSep_ProcessedInsideFolder(t *testing.T) {
	cwd, photos := newWorkspace(t, 1)

	rep, err := Execute(context.Background(), load(t, cwd, config.CLIArgs{
		PhotosFolder: photos + string(filepath.Separator), PhotosFolderSet: true,
		NameAs: "p", NameAsSet: true,
	}), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got := ProcessedDir(photos + string(filepath.Separator)); got != filepath.Join(photos, ProcessedDirName) {
		t.Fatalf("ProcessedDir=%q", got)
	}
	if _, err := os.Stat(filepath.Join(photos, ProcessedDirName, "p0.png")); err != nil {
		t.Fatalf("期望输出位于图片目录内部：%v", err)
	}
	if rep.Gallery.Path != filepath.Join(photos, "gallery.html") {
		t.Fatalf("画廊路径不正确：%q", rep.Gallery.Path)
	}
}

func TestExecute_NoImages_NotFatal(t *testing.T) {
	cwd, _ := newWorkspace(t, 0)

	rep, err := Execute(context.Background(), load(t, cwd, config.CLIArgs{}), nil)
	if err != nil {
		t.Fatalf("没有图片不应视为失败：%v", err)
	}
	if !rep.NoImages {
		t.Fatalf("期望 NoImages=true")
	}
	if _, err := os.Stat(filepath.Join(cwd, "gallery.html")); !os.IsNotExist(err) {
		t.Fatalf("没有图片时不应写文档")
	}
}
