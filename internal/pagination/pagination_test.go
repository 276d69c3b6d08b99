package pagination

import "testing"

func TestParseDefaults(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"empty", "", "", 1, DefaultLimit},
		{"valid", "3", "10", 3, 10},
		{"non-numeric", "abc", "xyz", 1, DefaultLimit},
		{"zero", "0", "0", 1, DefaultLimit},
		{"negative", "-2", "-5", 1, DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.page, tt.limit, DefaultLimit)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Parse(%q, %q) = %+v", tt.page, tt.limit, p)
			}
		})
	}
}

func TestParseMessageDefault(t *testing.T) {
	p := Parse("", "", DefaultMessageLimit)
	if p.Limit != 50 {
		t.Errorf("message limit = %d, want 50", p.Limit)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 20}).Offset(); got != 0 {
		t.Errorf("page 1 offset = %d", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Errorf("page 3 offset = %d", got)
	}
}

func TestMetaFor(t *testing.T) {
	tests := []struct {
		total     int64
		limit     int
		wantPages int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 10, 3},
	}
	for _, tt := range tests {
		meta := MetaFor(Params{Page: 1, Limit: tt.limit}, tt.total)
		if meta.TotalPages != tt.wantPages {
			t.Errorf("MetaFor(total=%d, limit=%d).TotalPages = %d, want %d",
				tt.total, tt.limit, meta.TotalPages, tt.wantPages)
		}
		if meta.Total != tt.total {
			t.Errorf("total = %d, want %d", meta.Total, tt.total)
		}
	}
}
