package utils

import "testing"

func TestValidateAndNormalizePagination(t *testing.T) {
	cases := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{1, 20, 1, 20},
		{0, 0, 1, 20},
		{-5, -1, 1, 20},
		{3, 50, 3, 50},
		{1, 500, 1, 100},
	}
	for _, tc := range cases {
		page, pageSize := ValidateAndNormalizePagination(tc.page, tc.pageSize)
		if page != tc.wantPage || pageSize != tc.wantPageSize {
			t.Errorf("ValidateAndNormalizePagination(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.pageSize, page, pageSize, tc.wantPage, tc.wantPageSize)
		}
	}
}

func TestCalculatePaginationInfo(t *testing.T) {
	info := CalculatePaginationInfo(45, 2, 20)
	if info.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrevious {
		t.Errorf("HasNext = %v, HasPrevious = %v, want both true", info.HasNext, info.HasPrevious)
	}

	empty := CalculatePaginationInfo(0, 1, 20)
	if empty.TotalPages != 1 {
		t.Errorf("empty TotalPages = %d, want 1", empty.TotalPages)
	}
	if empty.HasNext || empty.HasPrevious {
		t.Error("empty result should have no neighbors")
	}
}

func TestCalculateOffset(t *testing.T) {
	if got := CalculateOffset(1, 20); got != 0 {
		t.Errorf("CalculateOffset(1, 20) = %d, want 0", got)
	}
	if got := CalculateOffset(4, 25); got != 75 {
		t.Errorf("CalculateOffset(4, 25) = %d, want 75", got)
	}
}
