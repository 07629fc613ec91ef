package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListImages_SortedAndFiltered(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "d.gif"))
	touch(t, filepath.Join(root, "b.png"))
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "c.jpg"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub.png", "inner.png")) // 目录名像图片，也要跳过

	got, err := ListImages(root, GalleryExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
		if r.Folder != root {
			t.Fatalf("Folder 不正确：%q", r.Folder)
		}
	}
	want := []string{"a.png", "b.png", "c.jpg", "d.gif"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("结果不符合预期 (-want +got):\n%s", diff)
	}
}

func TestListImages_ExtCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X.JPEG"))
	touch(t, filepath.Join(root, "y.Png"))

	got, err := ListImages(root, GalleryExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个图片文件，实际 %d", len(got))
	}
	// 大写字母排在小写之前（按字节比较）。
	if got[0].Name != "X.JPEG" {
		t.Fatalf("期望首个为 X.JPEG，实际=%q", got[0].Name)
	}
}

func TestListImages_Empty(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "readme.md"))

	got, err := ListImages(root, GalleryExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望没有图片，实际 %d", len(got))
	}
}

func TestFirstSubdir(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "zeta", "x.png"))
	touch(t, filepath.Join(root, "alpha", "x.png"))
	touch(t, filepath.Join(root, ".git", "HEAD"))
	touch(t, filepath.Join(root, "file.png"))

	got, err := FirstSubdir(root)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "alpha" {
		t.Fatalf("期望 alpha，实际 %q", got)
	}

	empty := t.TempDir()
	got, err = FirstSubdir(empty)
	if err != nil || got != "" {
		t.Fatalf("空目录期望 \"\"，实际 %q err=%v", got, err)
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
