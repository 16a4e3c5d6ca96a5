package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageClamps(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Limit: 100}, NewPage(3, 500))
	assert.Equal(t, 40, NewPage(3, 20).Offset())
}

func TestPaginate(t *testing.T) {
	p := NewPage(2, 10)
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, p.Paginate(21))
	assert.Equal(t, 0, p.Paginate(0).TotalPages)
}
