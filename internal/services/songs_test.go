package services

import "testing"

func TestClampPagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults for zero values", 0, 0, 1, defaultPageSize},
		{"negative page floors at one", -3, 10, 1, 10},
		{"in-range values pass through", 4, 50, 4, 50},
		{"oversized pageSize caps at max", 1, 500, 1, maxPageSize},
		{"negative pageSize falls back to default", 2, -1, 2, defaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := clampPagination(tt.page, tt.pageSize)
			if page != tt.wantPage || pageSize != tt.wantPageSize {
				t.Errorf("clampPagination(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.pageSize, page, pageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
