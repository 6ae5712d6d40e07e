package tui

import (
	"strings"
	"testing"

	"github.com/betafactory/receipted/internal/api"
)

func page(names []string, hasMore bool, token string) *api.ItemStatsPage {
	items := make([]api.UserItemStats, len(names))
	for i, name := range names {
		items[i].ItemName = name
	}
	return &api.ItemStatsPage{Items: items, HasMore: hasMore, NextToken: token}
}

func TestItemPagerCachesVisitedPages(t *testing.T) {
	app := newTestApp(t, true)
	app.view = viewStats
	app.stats.tab = tabStatsItems

	app.Update(itemStatsMsg{gen: app.stats.gen, reset: true, page: page([]string{"a", "b"}, true, "tok-1")})
	if app.stats.pager.page != 0 || !app.stats.pager.hasMore {
		t.Fatal("first page should land on page 0 with more available")
	}

	// next: no cached page ahead, so a fetch with the stored token
	_, cmd := app.Update(key("right"))
	if cmd == nil {
		t.Fatal("advancing past the cache must fetch")
	}
	app.Update(itemStatsMsg{gen: app.stats.gen, page: page([]string{"c", "d"}, false, "")})
	if app.stats.pager.page != 1 {
		t.Fatalf("pager on page %d, want 1", app.stats.pager.page)
	}

	// prev: cached, no network
	_, cmd = app.Update(key("left"))
	if cmd != nil {
		t.Fatal("moving back must not fetch")
	}
	if app.stats.pager.page != 0 {
		t.Fatalf("pager on page %d, want 0", app.stats.pager.page)
	}
	if got := app.stats.pager.pages[0][0].ItemName; got != "a" {
		t.Fatalf("page 1 cache = %q, want original first page", got)
	}

	// next again: cached page ahead, no network
	_, cmd = app.Update(key("right"))
	if cmd != nil {
		t.Fatal("advancing onto a cached page must not fetch")
	}
	if app.stats.pager.page != 1 {
		t.Fatalf("pager on page %d, want 1", app.stats.pager.page)
	}

	// hasMore=false: next is a no-op
	_, cmd = app.Update(key("right"))
	if cmd != nil || app.stats.pager.page != 1 {
		t.Fatal("pager must stop at the last page")
	}
}

func TestPagingKeysIgnoredWhileLoading(t *testing.T) {
	app := newTestApp(t, true)
	app.view = viewStats
	app.stats.tab = tabStatsItems
	app.Update(itemStatsMsg{gen: app.stats.gen, reset: true, page: page([]string{"a"}, true, "tok-1")})
	app.stats.loading = true

	_, cmd := app.Update(key("right"))
	if cmd != nil {
		t.Fatal("next must be ignored while a request is in flight")
	}
	_, cmd = app.Update(key("left"))
	if cmd != nil || app.stats.pager.page != 0 {
		t.Fatal("prev must be ignored while a request is in flight")
	}
}

func TestCategoryDrillDownScopesItemsTab(t *testing.T) {
	app := newTestApp(t, true)
	app.view = viewStats
	app.stats.tab = tabStatsCategories
	run(t, app, app.fetchCategoriesCmd())

	if app.stats.categories == nil || len(app.stats.categories.Categories) == 0 {
		t.Fatal("categories fetch failed")
	}
	want := app.stats.categories.Categories[0].Category

	_, cmd := app.Update(key("enter"))
	run(t, app, cmd)

	if app.stats.tab != tabStatsItems {
		t.Fatal("enter on a category should jump to the items tab")
	}
	if app.stats.categoryScope != want {
		t.Fatalf("category scope = %q, want %q", app.stats.categoryScope, want)
	}
	for _, item := range app.stats.pager.pages[0] {
		if !strings.EqualFold(item.Category, want) {
			t.Fatalf("item %q outside scoped category %q", item.ItemName, want)
		}
	}
}

func TestGlobalLookupMissSuggestsNearestName(t *testing.T) {
	app := newTestApp(t, true)
	app.view = viewStats
	app.stats.tab = tabStatsGlobal
	app.stats.seenNames["Coffee Beans"] = struct{}{}
	app.stats.seenNames["Bread"] = struct{}{}

	run(t, app, app.lookupGlobal("Coffee Baens"))

	if !app.stats.globalNotFound {
		t.Fatal("unknown item should report not found")
	}
	if app.stats.globalSuggestion != "Coffee Beans" {
		t.Fatalf("suggestion = %q, want %q", app.stats.globalSuggestion, "Coffee Beans")
	}
	if got := app.renderGlobalTab(); !strings.Contains(got, "No results") || !strings.Contains(got, "Coffee Beans") {
		t.Fatalf("miss should render no-results plus the suggestion, got:\n%s", got)
	}
}

func TestGlobalLookupHit(t *testing.T) {
	app := newTestApp(t, true)
	app.view = viewStats
	app.stats.tab = tabStatsGlobal

	run(t, app, app.lookupGlobal("coffee beans"))

	if app.stats.global == nil {
		t.Fatal("known item should resolve")
	}
	if app.stats.globalNotFound {
		t.Fatal("hit must not flag not-found")
	}
}

func TestPeriodFilterDrivesEncoding(t *testing.T) {
	s := newStatsState(mustDate(t, "2025-11-01"))

	if got := s.periodLabel(); got != "current-year" {
		t.Fatalf("default period = %q", got)
	}
	s.filterKind = filterYear
	s.filterYear = 2024
	if got := s.periodLabel(); got != "2024" {
		t.Fatalf("year period = %q", got)
	}
	s.filterKind = filterMonth
	s.filterMonth = 3
	s.filterYear = 2025
	if got := s.periodLabel(); got != "2025-03" {
		t.Fatalf("month period = %q", got)
	}
	s.filterKind = filterLastMonths
	s.filterMonths = 6
	if got := s.periodLabel(); got != "last-6-months" {
		t.Fatalf("last-months period = %q", got)
	}
}
