package forecast

import "github.com/shuv1824/skycast/internal/types"

const DefaultPageSize = 5

type Page struct {
	Items      []types.DailyForecast `json:"items"`
	Number     int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
	PageSize   int                   `json:"page_size"`
	Total      int                   `json:"total"`
}

// Paginate slices items for the requested 1-based page. Out-of-range
// pages are clamped, never rejected.
func Paginate(items []types.DailyForecast, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	p := Page{
		Number:     clamp(page, 1, max(1, totalPages)),
		TotalPages: totalPages,
		PageSize:   pageSize,
		Total:      total,
	}

	start := (p.Number - 1) * pageSize
	end := min(start+pageSize, total)
	if start >= end {
		p.Items = []types.DailyForecast{}
		return p
	}

	p.Items = items[start:end]
	return p
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

func (p Page) Prev() int { return p.Go(p.Number - 1) }
func (p Page) Next() int { return p.Go(p.Number + 1) }

// Go returns n clamped to the valid page range.
func (p Page) Go(n int) int {
	return clamp(n, 1, max(1, p.TotalPages))
}

// Numbers lists every page number, for direct navigation links.
func (p Page) Numbers() []int {
	nums := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		nums = append(nums, i)
	}
	return nums
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
