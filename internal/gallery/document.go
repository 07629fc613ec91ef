package gallery

import (
	"fmt"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/John-Robertt/galmak/internal/domain"
)

// DefaultFooter 是命令行未指定 footer 时使用的署名。
const DefaultFooter = `Made by <a href="https://github.com/vedranaa/gallery_maker">gallery_maker.py</a>.`

// Config 描述一次画廊生成。构造后不再修改。
//
// 信任边界：WindowTitle/GalleryTitle/FooterText 原样写入 HTML，不做转义；
// FooterText 本身就允许包含超链接等标记。只有 SanitizeFooter=true 时才会
// 用 bluemonday 的 UGC 策略清洗 footer。
type Config struct {
	Columns        int
	Clickable      bool
	Filename       string
	WindowTitle    string
	GalleryTitle   string
	FooterText     string
	SanitizeFooter bool
}

// Document 是按行组织的完整 HTML 文档。
type Document struct {
	Lines []string
}

// Bytes 以 '\n' 连接各行并补一个结尾换行。
func (d Document) Bytes() []byte {
	return []byte(strings.Join(d.Lines, "\n") + "\n")
}

// Build 组装画廊文档。
//
// refs 必须已按文件名排序；prefix 是 img src 里放在文件名前面的目录名
// （文档写在图片目录里面时为空）。
func Build(refs []domain.ImageRef, prefix string, cfg Config) (Document, error) {
	split, err := splitClass(cfg.Columns)
	if err != nil {
		return Document{}, err
	}
	sizes, err := ColumnSizes(len(refs), cfg.Columns)
	if err != nil {
		return Document{}, err
	}
	cols, err := Partition(refs, sizes)
	if err != nil {
		return Document{}, err
	}

	footer := cfg.FooterText
	if cfg.SanitizeFooter && footer != "" {
		footer = bluemonday.UGCPolicy().Sanitize(footer)
	}

	var lines []string
	lines = append(lines, head(split, cfg)...)
	lines = append(lines, photoGrid(cols, prefix, split, cfg.Clickable)...)
	if cfg.Clickable {
		lines = append(lines, modalBlock...)
	}
	if footer != "" {
		lines = append(lines, footerBlock(footer)...)
	}
	lines = append(lines, endContent...)
	if cfg.Clickable {
		lines = append(lines, scriptBlock...)
	}
	lines = append(lines, endBody...)

	return Document{Lines: lines}, nil
}

func head(split string, cfg Config) []string {
	lines := []string{
		"<!DOCTYPE html>",
		"<html>",
	}
	if cfg.WindowTitle != "" {
		lines = append(lines, "<title>"+cfg.WindowTitle+"</title>")
	}

	imgStyle := "margin-bottom: 10px"
	if cfg.Clickable {
		imgStyle += "; cursor: pointer"
	}
	lines = append(lines,
		`<meta charset="UTF-8">`,
		`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		`<link rel="stylesheet" href="https://www.w3schools.com/w3css/4/w3.css">`,
		`<link rel="stylesheet" href="https://fonts.googleapis.com/css?family=Raleway">`,
		"<style>",
		`body,h1,h2,h3,h4,h5 {font-family: "Raleway", sans-serif}`,
		fmt.Sprintf(".w3-%s img{%s}", split, imgStyle),
	)
	if cfg.Clickable {
		lines = append(lines, fmt.Sprintf(".w3-%s img:hover{opacity: 0.6; transition: 0.3s}", split))
	}
	lines = append(lines,
		"</style>",
		"",
		`<body class="w3-light-grey">`,
		"",
	)

	if cfg.GalleryTitle != "" {
		lines = append(lines,
			"<!-- Top menu on small screens -->",
			`<header class="w3-container w3-top w3-light-gray w3-padding-16">`,
			`  <span class="w3-left  w3-xlarge w3-padding">`+cfg.GalleryTitle+"</span>",
			"</header>",
			"",
		)
	}

	return append(lines,
		"<!-- !PAGE CONTENT! -->",
		`<div class="w3-main w3-content" style="max-width:1600px;margin-top:83px">`,
		"",
	)
}

func photoGrid(cols [][]domain.ImageRef, prefix, split string, clickable bool) []string {
	click := ""
	if clickable {
		click = `onclick="onClick(this)" `
	}

	lines := []string{
		"  <!-- Photo grid -->",
		`  <div class="w3-row-padding w3-grayscale-min">`,
	}
	for _, col := range cols {
		lines = append(lines, "", fmt.Sprintf(`   <div class="w3-%s">`, split))
		for _, r := range col {
			lines = append(lines, fmt.Sprintf(`      <img src="%s" style="width:100%%" %salt="">`, imageSrc(prefix, r.Name), click))
		}
		lines = append(lines, "   </div>")
	}
	return append(lines, "", "  </div>", "")
}

// imageSrc 拼出相对文档的图片 URL（URL 一律用 '/'）。
func imageSrc(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

var modalBlock = []string{
	"  <!-- Modal for full size images on click-->",
	`  <div id="modal01" class="w3-modal w3-black" style="padding-top:0" onclick="this.style.display='none'">`,
	`    <span class="w3-button w3-black w3-xlarge w3-display-topright">×</span>`,
	`    <div class="w3-modal-content w3-animate-zoom w3-center w3-transparent w3-padding-64">`,
	`      <img id="img01" class="w3-image">`,
	"    </div>",
	"  </div>",
	"",
}

var scriptBlock = []string{
	"<script>",
	"// Modal Image Gallery",
	"function onClick(element) {",
	`  document.getElementById("img01").src = element.src;`,
	`  document.getElementById("modal01").style.display = "block";`,
	"}",
	"</script>",
	"",
}

func footerBlock(text string) []string {
	return []string{
		"  <!-- Footer -->",
		`  <footer class="w3-container w3-padding-32 w3-light-gray">`,
		`    <div class="w3-row-padding">`,
		"      <p>" + text + "</p>",
		"    </div>",
		"  </footer>",
		"",
	}
}

var endContent = []string{
	"<!-- End page content -->",
	"</div>",
	"",
}

var endBody = []string{
	"</body>",
	"</html>",
	"",
}
