package gallery

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMake_WritesNextToFolder(t *testing.T) {
	root := t.TempDir()
	photos := filepath.Join(root, "photos")
	touch(t, filepath.Join(photos, "b.png"))
	touch(t, filepath.Join(photos, "a.jpg"))
	touch(t, filepath.Join(photos, "skip.txt"))

	res, err := Make(photos, baseConfig())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	want := filepath.Join(root, "gallery.html")
	if res.Path != want {
		t.Fatalf("期望写到 %q，实际 %q", want, res.Path)
	}
	if res.Images != 2 {
		t.Fatalf("期望 2 张图片，实际 %d", res.Images)
	}
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("读取文档失败：%v", err)
	}
	if !strings.Contains(string(b), `src="photos/a.jpg"`) {
		t.Fatalf("文档里缺少相对路径图片")
	}
}

func TestMake_TrailingSeparatorWritesInside(t *testing.T) {
	root := t.TempDir()
	photos := filepath.Join(root, "photos")
	touch(t, filepath.Join(photos, "a.png"))

	res, err := Make(photos+string(filepath.Separator), baseConfig())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := filepath.Join(photos, "gallery.html")
	if res.Path != want {
		t.Fatalf("期望写到 %q，实际 %q", want, res.Path)
	}
	b, _ := os.ReadFile(want)
	if !strings.Contains(string(b), `src="a.png"`) {
		t.Fatalf("写在目录内时 src 应为裸文件名")
	}
}

func TestMake_NoImages_NoFile(t *testing.T) {
	root := t.TempDir()
	photos := filepath.Join(root, "photos")
	touch(t, filepath.Join(photos, "notes.txt"))

	_, err := Make(photos, baseConfig())
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("期望 ErrNoImages，实际：%v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "gallery.html")); !os.IsNotExist(err) {
		t.Fatalf("没有图片时不应写出文档")
	}
}

func TestMake_RegenerateIsByteIdentical(t *testing.T) {
	root := t.TempDir()
	photos := filepath.Join(root, "photos")
	touch(t, filepath.Join(photos, "a.png"))
	touch(t, filepath.Join(photos, "b.gif"))

	if _, err := Make(photos, baseConfig()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	first, _ := os.ReadFile(filepath.Join(root, "gallery.html"))
	if _, err := Make(photos, baseConfig()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	second, _ := os.ReadFile(filepath.Join(root, "gallery.html"))
	if !bytes.Equal(first, second) {
		t.Fatalf("重复生成结果不一致")
	}
}

func TestMake_RejectsFilenameWithPath(t *testing.T) {
	cfg := baseConfig()
	cfg.Filename = "sub/gallery.html"
	if _, err := Make(t.TempDir(), cfg); err == nil {
		t.Fatalf("期望文件名包含路径时报错")
	}
}

func TestSplitFolder(t *testing.T) {
	sep := string(filepath.Separator)
	cases := []struct {
		in, dir, prefix string
	}{
		{in: filepath.Join("a", "photos"), dir: "a", prefix: "photos"},
		{in: filepath.Join("a", "photos") + sep, dir: filepath.Join("a", "photos"), prefix: ""},
		{in: "photos", dir: ".", prefix: "photos"},
	}
	for _, c := range cases {
		dir, prefix := SplitFolder(c.in)
		if dir != c.dir || prefix != c.prefix {
			t.Fatalf("SplitFolder(%q)=(%q,%q)，期望 (%q,%q)", c.in, dir, prefix, c.dir, c.prefix)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
