package preprocess

import (
	"errors"
	"fmt"
	"image"

	"github.com/John-Robertt/galmak/internal/domain"
	"github.com/John-Robertt/galmak/internal/infra/imgx"
)

// ErrAllSavesFailed 表示级联保存的四步全部失败；该文件被跳过。
var ErrAllSavesFailed = errors.New("所有保存方式均失败")

type saveStep struct {
	ext string
	rgb bool
}

// SaveWithFallback 把 img 保存为 base+ext；失败时按固定顺序回退：
//
//  1. 原样保存为 ext
//  2. 转为 3 通道后保存为 ext
//  3. 转为 3 通道后保存为 DefaultLossyExt
//  4. 原样保存为 DefaultLosslessExt
//
// 返回最终写出的路径与每一步的尝试记录。第 3/4 步成功时文件扩展名会变化，
// 调用方必须把最终路径报告给用户。
func SaveWithFallback(codec imgx.Codec, img image.Image, base, ext string) (string, []domain.SaveAttempt, error) {
	steps := []saveStep{
		{ext: ext},
		{ext: ext, rgb: true},
		{ext: DefaultLossyExt, rgb: true},
		{ext: DefaultLosslessExt},
	}

	var (
		rgb      image.Image
		lastErr  error
		attempts = make([]domain.SaveAttempt, 0, len(steps))
	)
	for i, st := range steps {
		im := img
		if st.rgb {
			if rgb == nil {
				rgb = codec.ToRGB(img)
			}
			im = rgb
		}

		path := base + st.ext
		err := codec.Encode(im, path)
		a := domain.SaveAttempt{Step: i + 1, Path: path, RGB: st.rgb}
		if err != nil {
			a.Err = err.Error()
			attempts = append(attempts, a)
			lastErr = err
			continue
		}
		attempts = append(attempts, a)
		return path, attempts, nil
	}
	return "", attempts, fmt.Errorf("%w：%s：%v", ErrAllSavesFailed, base, lastErr)
}
