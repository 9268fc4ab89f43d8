package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsBounds(t *testing.T) {
	p := Pagination{Page: 0, PageSize: -5}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = Pagination{Page: 3, PageSize: 9999}.Normalize()
	assert.Equal(t, MaxPageSize, p.PageSize)
}

func TestBuildPageInfoRoundsUp(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 1, PageSize: 20}, 41)
	assert.Equal(t, 41, info.TotalCount)
	assert.Equal(t, 3, info.TotalPages)

	info = BuildPageInfo(Pagination{Page: 1, PageSize: 20}, 40)
	assert.Equal(t, 2, info.TotalPages)

	info = BuildPageInfo(Pagination{Page: 1, PageSize: 20}, 0)
	assert.Equal(t, 0, info.TotalPages)
}

func TestSliceCoversAllItemsExactlyOnce(t *testing.T) {
	data := make([]int, 0, 53)
	for i := 0; i < 53; i++ {
		data = append(data, i)
	}

	page := Pagination{Page: 1, PageSize: 10}
	info := BuildPageInfo(page, len(data))

	var seen []int
	for p := 1; p <= info.TotalPages; p++ {
		seen = append(seen, Slice(data, Pagination{Page: p, PageSize: 10})...)
	}
	assert.Equal(t, data, seen)
}

func TestSliceOutOfRangePageIsEmpty(t *testing.T) {
	data := []int{1, 2, 3}
	assert.Empty(t, Slice(data, Pagination{Page: 9, PageSize: 10}))
}
