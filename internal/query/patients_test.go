package query

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuild_PageAndLimit(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "20", 3, 20},
		{"limit clamped", "1", "500", 1, 100},
		{"limit exactly max", "1", "100", 1, 100},
		{"negative limit", "1", "-5", 1, 10},
		{"non numeric limit", "1", "abc", 1, 10},
		{"zero limit", "1", "0", 1, 10},
		{"zero page", "0", "10", 1, 10},
		{"negative page", "-4", "10", 1, 10},
		{"non numeric page", "x", "10", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(ListParams{Page: tt.page, Limit: tt.limit})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Page != tt.wantPage || plan.Limit != tt.wantLimit {
				t.Fatalf("expected page=%d limit=%d, got page=%d limit=%d",
					tt.wantPage, tt.wantLimit, plan.Page, plan.Limit)
			}
			if plan.Skip != (plan.Page-1)*plan.Limit {
				t.Fatalf("skip %d inconsistent with page %d limit %d", plan.Skip, plan.Page, plan.Limit)
			}
		})
	}
}

func TestBuild_Skip(t *testing.T) {
	plan, _ := Build(ListParams{Page: "4", Limit: "25"})
	if plan.Skip != 75 {
		t.Fatalf("expected skip 75, got %d", plan.Skip)
	}
}

func TestTotalPages(t *testing.T) {
	plan, _ := Build(ListParams{Limit: "10"})
	cases := map[int64]int64{0: 0, 1: 1, 10: 1, 11: 2}
	for total, want := range cases {
		if got := plan.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestBuild_Sort(t *testing.T) {
	plan, err := Build(ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.SortKey != "createdAt" || plan.SortOrder != -1 {
		t.Fatalf("expected createdAt desc, got %s %d", plan.SortKey, plan.SortOrder)
	}

	plan, _ = Build(ListParams{SortBy: "lastName", SortOrder: "asc"})
	sort := plan.Sort()
	if sort[0].Key != "lastName" || sort[0].Value != 1 {
		t.Fatalf("unexpected sort %v", sort)
	}
	if sort[1].Key != "_id" {
		t.Fatalf("expected _id tiebreaker, got %v", sort)
	}

	plan, _ = Build(ListParams{SortOrder: "ASC"})
	if plan.SortOrder != -1 {
		t.Fatal("anything other than asc must sort descending")
	}
}

func TestBuild_RejectsUnknownSortField(t *testing.T) {
	for _, field := range []string{"password", "_id", "medicalHistory", "$where"} {
		_, err := Build(ListParams{SortBy: field})
		var sfe *SortFieldError
		if !errors.As(err, &sfe) {
			t.Fatalf("sortBy=%q: expected SortFieldError, got %v", field, err)
		}
	}
}

func TestFilter(t *testing.T) {
	plan, _ := Build(ListParams{Search: "   "})
	if len(plan.Filter()) != 0 {
		t.Fatalf("blank search must not filter, got %v", plan.Filter())
	}

	plan, _ = Build(ListParams{Search: " a.b+ "})
	or, ok := plan.Filter()["$or"].(bson.A)
	if !ok || len(or) != 4 {
		t.Fatalf("expected $or over four fields, got %v", plan.Filter())
	}
	first := or[0].(bson.M)["firstName"].(primitive.Regex)
	if first.Pattern != `a\.b\+` || first.Options != "i" {
		t.Fatalf("expected escaped case-insensitive pattern, got %+v", first)
	}
}

func TestMatches(t *testing.T) {
	plan, _ := Build(ListParams{Search: "SMI"})
	if !plan.Matches(map[string]string{"lastName": "Smith"}) {
		t.Error("expected case-insensitive match on lastName")
	}
	if plan.Matches(map[string]string{"address": "Smith street"}) {
		t.Error("address is not searchable")
	}
}
