package domain

// Stats summarizes list completion for the stat fields and progress indicator.
type Stats struct {
	Total     int
	Completed int
	Active    int
	Percent   float64
}

func ComputeStats(tasks []Task) Stats {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	stats := Stats{
		Total:     len(tasks),
		Completed: completed,
		Active:    len(tasks) - completed,
	}
	if stats.Total > 0 {
		stats.Percent = float64(completed) / float64(stats.Total) * 100
	}
	return stats
}
