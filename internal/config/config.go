package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/galmak/internal/domain"
	"github.com/John-Robertt/galmak/internal/gallery"
	"github.com/John-Robertt/galmak/internal/infra/imgx"
	"github.com/John-Robertt/galmak/internal/preprocess"
	"github.com/John-Robertt/galmak/internal/scan"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或其中字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeUsage 表示 CLI 参数值不合法。
	ErrCodeUsage = "usage_invalid"
)

// FileName 是工作目录下可选配置文件的固定文件名。
const FileName = "galmak.yaml"

const (
	DefaultColumns      = 4
	DefaultFilename     = "gallery.html"
	DefaultWindowTitle  = "Gallery"
	DefaultGalleryTitle = "MY GALLERY"
	DefaultWorkers      = 1
)

// CLIArgs 保留每个参数“是否显式指定”的信息，
// 这样 --clickable=false 才能覆盖配置文件里的 clickable: true。
type CLIArgs struct {
	PhotosFolder    string
	PhotosFolderSet bool

	Columns    int
	ColumnsSet bool

	Clickable    bool
	ClickableSet bool

	Filename    string
	FilenameSet bool

	WindowTitle    string
	WindowTitleSet bool

	GalleryTitle    string
	GalleryTitleSet bool

	FooterText    string
	FooterTextSet bool

	FromExt    []string
	FromExtSet bool

	MaxSize    int
	MaxSizeSet bool

	ToExt    string
	ToExtSet bool

	NameAs    string
	NameAsSet bool
}

// FileConfig 对应 galmak.yaml。指针字段区分“未写”与“写了零值”。
type FileConfig struct {
	PhotosFolder *string `yaml:"photos_folder"`
	Columns      *int    `yaml:"nr_columns"`
	Clickable    *bool   `yaml:"clickable"`
	Filename     *string `yaml:"filename"`
	WindowTitle  *string `yaml:"window_title"`
	GalleryTitle *string `yaml:"gallery_title"`
	FooterText   *string `yaml:"footer_text"`

	// from_ext 与 CLI 一致，是空格分隔的一串扩展名。
	FromExt *string `yaml:"from_ext"`
	MaxSize *int    `yaml:"max_size"`
	ToExt   *string `yaml:"to_ext"`
	NameAs  *string `yaml:"name_as"`

	Workers        *int    `yaml:"workers"`
	Resample       *string `yaml:"resample"`
	AutoOrient     *bool   `yaml:"auto_orient"`
	JPEGQuality    *int    `yaml:"jpeg_quality"`
	SanitizeFooter *bool   `yaml:"sanitize_footer"`
}

// EffectiveConfig 是合并并规范化后的最终配置，下游直接消费。
type EffectiveConfig struct {
	// PhotosFolder 是绝对路径；若原值带末尾分隔符则保留。
	PhotosFolder string
	// PhotosFolderDefaulted 表示 CLI 与配置文件都没给出图片目录。
	PhotosFolderDefaulted bool

	Gallery gallery.Config

	// Process 为 true 时先预处理到 _processed_ 再生成画廊。
	Process    bool
	Preprocess preprocess.Config

	Resample    string
	AutoOrient  bool
	JPEGQuality int

	// ConfigFile 是实际读取的配置文件路径；未读取时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <cwd>/galmak.yaml（可选），并与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：CLI > 配置文件 > 内置默认。
// workers/resample/auto_orient/jpeg_quality/sanitize_footer 只能由配置文件控制。
//
// 图片目录的默认值：cwd 下按名称排序的第一个非隐藏子目录；没有则为 cwd 本身
// （带末尾分隔符，即画廊写在 cwd 里面）。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	eff, err := merge(cwdAbs, cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	if exists {
		eff.ConfigFile = cfgPath
	}
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// 非法值的错误码取决于值来自哪里：CLI -> usage，文件 -> config。
	bad := func(fromCLI bool, err error) error {
		if fromCLI {
			return &Error{Code: ErrCodeUsage, Err: err}
		}
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	var eff EffectiveConfig

	// photos_folder
	switch {
	case cli.PhotosFolderSet:
		if strings.TrimSpace(cli.PhotosFolder) == "" {
			return EffectiveConfig{}, bad(true, fmt.Errorf("photos_folder 不能为空"))
		}
		eff.PhotosFolder = resolveFolder(cwdAbs, cli.PhotosFolder)
	case fc.PhotosFolder != nil && strings.TrimSpace(*fc.PhotosFolder) != "":
		eff.PhotosFolder = resolveFolder(cwdAbs, *fc.PhotosFolder)
	default:
		sub, err := scan.FirstSubdir(cwdAbs)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwdAbs, Err: err}
		}
		if sub != "" {
			eff.PhotosFolder = filepath.Join(cwdAbs, sub)
		} else {
			eff.PhotosFolder = cwdAbs + string(filepath.Separator)
		}
		eff.PhotosFolderDefaulted = true
	}

	// gallery
	g := gallery.Config{
		Columns:      DefaultColumns,
		Clickable:    true,
		Filename:     DefaultFilename,
		WindowTitle:  DefaultWindowTitle,
		GalleryTitle: DefaultGalleryTitle,
		FooterText:   gallery.DefaultFooter,
	}
	columnsFromCLI := false
	if cli.ColumnsSet {
		g.Columns, columnsFromCLI = cli.Columns, true
	} else if fc.Columns != nil {
		g.Columns = *fc.Columns
	}
	if g.Columns < 1 || g.Columns > 4 {
		return EffectiveConfig{}, bad(columnsFromCLI, fmt.Errorf("%w：nr_columns=%d", gallery.ErrInvalidColumnCount, g.Columns))
	}
	if cli.ClickableSet {
		g.Clickable = cli.Clickable
	} else if fc.Clickable != nil {
		g.Clickable = *fc.Clickable
	}

	filenameFromCLI := false
	if cli.FilenameSet {
		g.Filename, filenameFromCLI = cli.Filename, true
	} else if fc.Filename != nil {
		g.Filename = *fc.Filename
	}
	if strings.TrimSpace(g.Filename) == "" {
		return EffectiveConfig{}, bad(filenameFromCLI, fmt.Errorf("filename 不能为空"))
	}
	if strings.ContainsAny(g.Filename, `/`+string(filepath.Separator)) {
		return EffectiveConfig{}, bad(filenameFromCLI, fmt.Errorf("filename 不能包含路径：%q", g.Filename))
	}

	g.WindowTitle = pickString(cli.WindowTitle, cli.WindowTitleSet, fc.WindowTitle, g.WindowTitle)
	g.GalleryTitle = pickString(cli.GalleryTitle, cli.GalleryTitleSet, fc.GalleryTitle, g.GalleryTitle)
	g.FooterText = pickString(cli.FooterText, cli.FooterTextSet, fc.FooterText, g.FooterText)
	if fc.SanitizeFooter != nil {
		g.SanitizeFooter = *fc.SanitizeFooter
	}
	eff.Gallery = g

	// 预处理：四个触发项任意一个（来自任一来源）被设置即开启。
	p := preprocess.Config{Workers: DefaultWorkers}

	switch {
	case cli.FromExtSet:
		exts, err := normalizeExts(cli.FromExt)
		if err != nil {
			return EffectiveConfig{}, bad(true, err)
		}
		p.SourceExts, eff.Process = exts, true
	case fc.FromExt != nil:
		exts, err := normalizeExts(strings.Fields(*fc.FromExt))
		if err != nil {
			return EffectiveConfig{}, bad(false, err)
		}
		p.SourceExts, eff.Process = exts, true
	default:
		p.SourceExts = preprocess.DefaultSourceExts()
	}

	switch {
	case cli.MaxSizeSet:
		if cli.MaxSize <= 0 {
			return EffectiveConfig{}, bad(true, fmt.Errorf("max_size 必须为正整数，实际 %d", cli.MaxSize))
		}
		p.MaxSize, eff.Process = cli.MaxSize, true
	case fc.MaxSize != nil:
		if *fc.MaxSize <= 0 {
			return EffectiveConfig{}, bad(false, fmt.Errorf("max_size 必须为正整数，实际 %d", *fc.MaxSize))
		}
		p.MaxSize, eff.Process = *fc.MaxSize, true
	}

	// to_ext 原样采用（仅补前导 '.'），不做格式收窄。
	if cli.ToExtSet || fc.ToExt != nil {
		ext := domain.NormalizeExt(pickString(cli.ToExt, cli.ToExtSet, fc.ToExt, ""))
		if ext == "" || ext == "." {
			return EffectiveConfig{}, bad(cli.ToExtSet, fmt.Errorf("to_ext 不能为空"))
		}
		p.TargetExt, eff.Process = ext, true
	}

	if cli.NameAsSet || fc.NameAs != nil {
		name := pickString(cli.NameAs, cli.NameAsSet, fc.NameAs, "")
		if strings.ContainsAny(name, `/`+string(filepath.Separator)) {
			return EffectiveConfig{}, bad(cli.NameAsSet, fmt.Errorf("name_as 不能包含路径：%q", name))
		}
		p.NameAs, eff.Process = name, true
	}

	if fc.Workers != nil {
		p.Workers = *fc.Workers
	}
	// 范围 [1, MaxWorkers]；超出截断。
	if p.Workers < 1 {
		p.Workers = 1
	}
	if p.Workers > preprocess.MaxWorkers {
		p.Workers = preprocess.MaxWorkers
	}
	eff.Preprocess = p

	// 编解码参数
	eff.Resample = imgx.ResampleCatmullRom
	if fc.Resample != nil {
		r := strings.ToLower(strings.TrimSpace(*fc.Resample))
		switch r {
		case imgx.ResampleCatmullRom, imgx.ResampleBilinear, imgx.ResampleLanczos:
			eff.Resample = r
		default:
			return EffectiveConfig{}, bad(false, fmt.Errorf("resample 只能是 catmullrom、bilinear 或 lanczos，实际是 %q", *fc.Resample))
		}
	}
	if fc.AutoOrient != nil {
		eff.AutoOrient = *fc.AutoOrient
	}
	eff.JPEGQuality = imgx.DefaultJPEGQuality
	if fc.JPEGQuality != nil {
		q := *fc.JPEGQuality
		if q < 1 || q > 100 {
			return EffectiveConfig{}, bad(false, fmt.Errorf("jpeg_quality 必须在 1..100 之间，实际 %d", q))
		}
		eff.JPEGQuality = q
	}

	return eff, nil
}

func pickString(cliVal string, cliSet bool, fileVal *string, def string) string {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// normalizeExts 把扩展名统一为小写、带 '.'，并去重（保持首次出现的顺序）。
func normalizeExts(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		e = strings.ToLower(domain.NormalizeExt(e))
		if e == "" || e == "." || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("from_ext 至少需要一个扩展名")
	}
	return out, nil
}

// resolveFolder 以 base 为基准把 p 变为绝对路径。
// 末尾分隔符有语义（画廊写在目录里面），Clean 之后需要补回。
func resolveFolder(base, p string) string {
	p = strings.TrimSpace(p)
	trailing := strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator))

	abs := filepath.Clean(p)
	if !filepath.IsAbs(abs) {
		abs = filepath.Clean(filepath.Join(base, abs))
	}
	if trailing && !strings.HasSuffix(abs, string(filepath.Separator)) {
		abs += string(filepath.Separator)
	}
	return abs
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
