package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		url  string
		want Page
	}{
		{"/x", Page{Limit: PageSize}},
		{"/x?limit=10&offset=20", Page{Limit: 10, Offset: 20}},
		{"/x?limit=0&offset=-5", Page{Limit: PageSize}},
		{"/x?limit=abc", Page{Limit: PageSize}},
		{"/x?limit=100000", Page{Limit: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := Parse(httptest.NewRequest("GET", tt.url, nil))
			if got != tt.want {
				t.Errorf("Parse(%s) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}
