package query

import "github.com/xdott/contact-dashboard-api/internal/entity"

const (
	// DefaultPageSize is the dashboard's fixed window size.
	DefaultPageSize = 100
	// DefaultPagerWidth is how many page-number buttons the pager shows.
	DefaultPagerWidth = 5
)

// Page is one pagination window over a filtered contact set.
type Page struct {
	Number     int              `json:"page"`
	Size       int              `json:"page_size"`
	TotalItems int              `json:"total_items"`
	TotalPages int              `json:"total_pages"`
	Records    []entity.Contact `json:"records"`
}

// Paginate slices the filtered set into a fixed-size window. The requested
// page is clamped into [1, totalPages]; out-of-range requests never error.
// An empty filtered set yields page 1 of 1 with no records.
func Paginate(filtered []entity.Contact, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalItems := len(filtered)
	totalPages := (totalItems + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	records := make([]entity.Contact, end-start)
	copy(records, filtered[start:end])

	return Page{
		Number:     page,
		Size:       size,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Records:    records,
	}
}

// PageNumbers returns the bounded sliding window of page-number buttons
// around the current page. The window is centered where possible and shifted
// at the edges so it always holds min(width, totalPages) entries.
func PageNumbers(current, totalPages, width int) []int {
	if width <= 0 {
		width = DefaultPagerWidth
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := current - width/2
	if start < 1 {
		start = 1
	}
	end := start + width - 1
	if end > totalPages {
		end = totalPages
		start = end - width + 1
		if start < 1 {
			start = 1
		}
	}

	numbers := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		numbers = append(numbers, n)
	}
	return numbers
}
