package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vietddude/harvester/internal/core/domain"
)

func fakeClassify(raw string) (domain.Category, string) {
	switch {
	case strings.Contains(raw, "nc"):
		return domain.CategoryExcluded, "nc"
	case strings.Contains(raw, "by"):
		return domain.CategoryIncluded, "by"
	default:
		return domain.CategoryAmbiguous, "none"
	}
}

func TestFilter(t *testing.T) {
	input := "id,BITSTREAM License\n" +
		"1,cc-by\n" +
		"2,cc-by-nc\n" +
		"3,\n" +
		"4,\"multi\nline by\"\n"

	var kept, excluded bytes.Buffer
	st, err := Filter(strings.NewReader(input), "BITSTREAM License", fakeClassify, &kept, &excluded)
	if err != nil {
		t.Fatal(err)
	}

	want := FilterStats{Total: 4, Included: 2, Excluded: 1, Ambiguous: 1}
	if st != want {
		t.Errorf("Filter() stats = %+v, want %+v", st, want)
	}

	header := "id,BITSTREAM License,License_Category,License_Reason\n"
	if !strings.HasPrefix(excluded.String(), header) {
		t.Errorf("excluded output missing header: %q", excluded.String())
	}
	if !strings.Contains(excluded.String(), "2,cc-by-nc,excluded,nc\n") {
		t.Errorf("excluded output = %q", excluded.String())
	}
	if !strings.Contains(kept.String(), "4,\"multi\nline by\",included,by\n") {
		t.Errorf("kept output = %q", kept.String())
	}
}
