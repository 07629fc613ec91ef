package gallery

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/galmak/internal/domain"
)

// ErrInvalidColumnCount 表示列数不在 1..4 之内（只有这四种 w3.css 分栏类）。
var ErrInvalidColumnCount = errors.New("列数只能是 1、2、3 或 4")

// splitClass 把列数映射到 w3.css 的分栏类名后缀。
func splitClass(columns int) (string, error) {
	switch columns {
	case 1:
		return "block", nil
	case 2:
		return "half", nil
	case 3:
		return "third", nil
	case 4:
		return "quarter", nil
	default:
		return "", fmt.Errorf("%w：%d", ErrInvalidColumnCount, columns)
	}
}

// ColumnSizes 把 total 张图片尽量均匀地分到 columns 列。
//
// 每列 total/columns 张；余下的 total%columns 张依次补给最前面的几列，
// 因此各列相差至多 1，且较长的列总在左侧。
func ColumnSizes(total, columns int) ([]int, error) {
	if _, err := splitClass(columns); err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("图片数量不能为负：%d", total)
	}
	base := total / columns
	rest := total % columns

	sizes := make([]int, columns)
	for i := range sizes {
		sizes[i] = base
		if i < rest {
			sizes[i]++
		}
	}
	return sizes, nil
}

// Partition 按 sizes 把有序的 refs 切成连续、不重叠的列。
// sizes 之和必须等于 len(refs)。
func Partition(refs []domain.ImageRef, sizes []int) ([][]domain.ImageRef, error) {
	sum := 0
	for _, n := range sizes {
		sum += n
	}
	if sum != len(refs) {
		return nil, fmt.Errorf("列大小之和 %d 与图片数量 %d 不一致", sum, len(refs))
	}

	cols := make([][]domain.ImageRef, len(sizes))
	k := 0
	for i, n := range sizes {
		cols[i] = refs[k : k+n : k+n]
		k += n
	}
	return cols, nil
}
