package tui

import (
	"github.com/betafactory/receipted/internal/api"
	"github.com/betafactory/receipted/internal/auth"
)

// messages

type authProbeMsg struct{ ok bool }

type authChangedMsg struct{ ok bool }

type signInStartedMsg struct {
	flow *auth.SignInFlow
	err  error
}

type signInDoneMsg struct{ err error }

type weeklyMsg struct {
	gen  int
	data *api.WeeklyPurchases
	err  error
}

type yearlyMsg struct {
	gen  int
	data *api.YearlySummary
	err  error
}

type monthlyMsg struct {
	gen  int
	data *api.MonthlySummary
	err  error
}

type statsSummaryMsg struct {
	gen  int
	data *api.UserSummaryStats
	err  error
}

type itemStatsMsg struct {
	gen   int
	reset bool
	page  *api.ItemStatsPage
	err   error
}

type categoryStatsMsg struct {
	gen  int
	data *api.CategoryStatsResponse
	err  error
}

type globalStatsMsg struct {
	gen  int
	name string
	data *api.GlobalItemStats
	err  error
}

type uploadDoneMsg struct {
	result *api.UploadResult
	err    error
}

type mutationDoneMsg struct {
	label string
	err   error
}
