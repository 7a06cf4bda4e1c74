package core

// CategoryAmount is an amount aggregated by event category.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthSummary is a compact spending summary for a specific year+month,
// computed over reviewed events.
type MonthSummary struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryAmount
}
