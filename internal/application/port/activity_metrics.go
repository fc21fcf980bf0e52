package port

// ActivityMetrics receives counters from the activity use cases.
type ActivityMetrics interface {
	CacheHit()
	CacheMiss()
	ActivitiesFetched(count int)
	TracksBuilt(count int)
}

// NopActivityMetrics discards everything.
type NopActivityMetrics struct{}

func (NopActivityMetrics) CacheHit() {}
func (NopActivityMetrics) CacheMiss() {}
func (NopActivityMetrics) ActivitiesFetched(int) {}
func (NopActivityMetrics) TracksBuilt(int) {}
