package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    int
		size    int
		wantErr string
	}{
		{name: "valid", page: 1, size: 10},
		{name: "large page", page: 500, size: 2},
		{name: "page zero", page: 0, size: 10, wantErr: "page number must be at least 1."},
		{name: "negative page", page: -3, size: 10, wantErr: "page number must be at least 1."},
		{name: "page size one", page: 1, size: 1, wantErr: "page size must be greater than one."},
		{name: "page size zero", page: 1, size: 0, wantErr: "page size must be greater than one."},
		{
			name: "both invalid coalesce into one message",
			page: 0, size: 0,
			wantErr: "page number must be at least 1. page size must be greater than one.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := PageRequest{Page: tt.page, PageSize: tt.size}.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, PageRequest{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, PageRequest{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 45, PageRequest{Page: 10, PageSize: 5}.Offset())
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{total: 0, size: 10, want: 0},
		{total: 1, size: 10, want: 1},
		{total: 10, size: 10, want: 1},
		{total: 11, size: 10, want: 2},
		{total: 25, size: 10, want: 3},
		{total: 4, size: 10, want: 1},
		{total: 100, size: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "TotalPages(%d, %d)", tt.total, tt.size)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	p := NewPage([]string{"a", "b"}, 25, 10)
	assert.Equal(t, []string{"a", "b"}, p.Items)
	assert.EqualValues(t, 25, p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)
}
