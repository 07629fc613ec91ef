package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/John-Robertt/galmak/internal/app/run"
	"github.com/John-Robertt/galmak/internal/config"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}
	if code := runMain(context.Background(), os.Args[1:], cwd, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// runMain 返回进程退出码：0 成功（包括没有图片）、1 运行失败、2 参数错误。
func runMain(ctx context.Context, args []string, cwd string, stdout, stderr io.Writer) int {
	for _, a := range args {
		if isHelp(a) {
			printUsage(stdout)
			return 0
		}
	}

	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printUsage(stderr)
		return 2
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if config.Code(err) == config.ErrCodeUsage {
			return 2
		}
		return 1
	}

	ui := newProgressUI(stdout)
	rep, err := run.Execute(ctx, eff, ui)
	if err != nil {
		if errors.Is(err, run.ErrProcessedExists) {
			fmt.Fprintf(stderr, "需要预处理，但 %s 已存在。中止。\n", run.ProcessedDir(eff.PhotosFolder))
			return 1
		}
		fmt.Fprintf(stderr, "运行失败：%v\n", err)
		return 1
	}

	ui.Finish(rep)
	return 0
}

// flagSetter 把一个参数值写入 CLIArgs 并标记为“已显式指定”。
type flagSetter func(cli *config.CLIArgs, v string) error

var flagTable = map[string]flagSetter{
	"photos_folder": func(c *config.CLIArgs, v string) error {
		c.PhotosFolder, c.PhotosFolderSet = v, true
		return nil
	},
	"nr_columns": func(c *config.CLIArgs, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("--nr_columns 必须是整数，实际是 %q", v)
		}
		c.Columns, c.ColumnsSet = n, true
		return nil
	},
	"clickable": func(c *config.CLIArgs, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("--clickable %w", err)
		}
		c.Clickable, c.ClickableSet = b, true
		return nil
	},
	"filename": func(c *config.CLIArgs, v string) error {
		c.Filename, c.FilenameSet = v, true
		return nil
	},
	"window_title": func(c *config.CLIArgs, v string) error {
		c.WindowTitle, c.WindowTitleSet = v, true
		return nil
	},
	"gallery_title": func(c *config.CLIArgs, v string) error {
		c.GalleryTitle, c.GalleryTitleSet = v, true
		return nil
	},
	"footer_text": func(c *config.CLIArgs, v string) error {
		c.FooterText, c.FooterTextSet = v, true
		return nil
	},
	"from_ext": func(c *config.CLIArgs, v string) error {
		c.FromExt, c.FromExtSet = strings.Fields(v), true
		return nil
	},
	"max_size": func(c *config.CLIArgs, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("--max_size 必须是整数，实际是 %q", v)
		}
		c.MaxSize, c.MaxSizeSet = n, true
		return nil
	},
	"to_ext": func(c *config.CLIArgs, v string) error {
		c.ToExt, c.ToExtSet = v, true
		return nil
	},
	"name_as": func(c *config.CLIArgs, v string) error {
		c.NameAs, c.NameAsSet = v, true
		return nil
	},
}

// parseArgs 支持 "--flag value" 与 "--flag=value" 两种写法。
// 单独的 --clickable（后面没有值）等价于 --clickable=true。
func parseArgs(args []string) (config.CLIArgs, error) {
	var cli config.CLIArgs

	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "--") {
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		}

		name, val, hasVal := strings.Cut(strings.TrimPrefix(a, "--"), "=")
		set, ok := flagTable[name]
		if !ok {
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		}

		if !hasVal {
			switch {
			case i+1 < len(args) && !strings.HasPrefix(args[i+1], "--"):
				i++
				val = args[i]
			case name == "clickable":
				val = "true"
			default:
				return config.CLIArgs{}, fmt.Errorf("--%s 需要一个值", name)
			}
		}

		if err := set(&cli, val); err != nil {
			return config.CLIArgs{}, err
		}
	}
	return cli, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("只能是 true/false/1/0/yes/no，实际是 %q", v)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  galmak [--photos_folder DIR] [--nr_columns 1..4] [--clickable true|false] ...

画廊参数：
  --photos_folder  图片目录（默认：当前目录下第一个子目录；没有则为当前目录）
                   以分隔符结尾时，画廊写在目录里面，否则写在上一级
  --nr_columns     列数 1..4（默认 4）
  --clickable      点击放大（默认 true）
  --filename       输出文件名（默认 gallery.html）
  --window_title   窗口标题（默认 Gallery；空串表示不输出）
  --gallery_title  页面标题（默认 MY GALLERY；空串表示不输出）
  --footer_text    页脚 HTML（空串表示不输出）

预处理参数（任意一个出现即先处理到 _processed_）：
  --from_ext       需要处理的扩展名，空格分隔（默认 ".jpeg .jpg .png .gif"）
  --max_size       最长边上限（像素）
  --to_ext         保存格式，例如 .jpg、.png、.webp
  --name_as        重命名前缀，例如 img -> img0, img1, ...

  -h, --help       显示帮助

当前目录下的 galmak.yaml 可设置以上同名字段，以及 workers、resample、
auto_orient、jpeg_quality、sanitize_footer。命令行参数优先。
`)
}
