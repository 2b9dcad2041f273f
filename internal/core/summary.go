package core

// OperationalMetrics are supplied by an operations collaborator and passed
// through the dashboard unchanged.
type OperationalMetrics struct {
	SpoilagePercent             float64
	AvgPickupToStorageMinutes   int
	ColdTurnaroundMinutes       int
	VolunteerUtilizationPercent int
	VolunteerScheduled          int
	VolunteerActive             int
}

// Summary is the dashboard view over the trailing seven days.
type Summary struct {
	FoodRescuedPerDay int
	RescuedSeries     []float64 // oldest to newest, last slot is today
	SeriesDates       []string  // YYYY-MM-DD label per series slot
	TotalEntries      int
	RecentCount       int
	Operational       OperationalMetrics
}

// CategoryTotals aggregates inventory for one food type.
type CategoryTotals struct {
	FoodType FoodType
	Count    int
	Quantity float64
}

// InventoryReport is the warehouse view over every stored entry.
type InventoryReport struct {
	TotalEntries  int
	TotalQuantity float64
	ByCategory    []CategoryTotals
}
