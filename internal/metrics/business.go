package metrics

// IncrementBoardCreated increments board creation counter
func (m *Metrics) IncrementBoardCreated() {
	m.safeExecute("IncrementBoardCreated", func() {
		m.BoardCreatedTotal.Inc()
	})
}

// RecordStructuralUpdate counts a columns replacement. result is "applied",
// "denied" or "invalid".
func (m *Metrics) RecordStructuralUpdate(result string) {
	m.safeExecute("RecordStructuralUpdate", func() {
		m.StructuralUpdatesTotal.WithLabelValues(result).Inc()
	})
}

// RecordShareChange counts a share ("share") or unshare ("unshare") on a level.
func (m *Metrics) RecordShareChange(level, action string) {
	m.safeExecute("RecordShareChange", func() {
		m.ShareChangesTotal.WithLabelValues(level, action).Inc()
	})
}

// IncrementLockContention increments the lock contention counter
func (m *Metrics) IncrementLockContention() {
	m.safeExecute("IncrementLockContention", func() {
		m.LockContentionTotal.Inc()
	})
}

// AddBoardsArchived adds n purged boards
func (m *Metrics) AddBoardsArchived(n int) {
	m.safeExecute("AddBoardsArchived", func() {
		m.BoardsArchivedTotal.Add(float64(n))
	})
}

// SetRealtimeConnections sets the open websocket gauge
func (m *Metrics) SetRealtimeConnections(n int) {
	m.safeExecute("SetRealtimeConnections", func() {
		m.RealtimeConnections.Set(float64(n))
	})
}

// RecordEventPublished counts a published board event
func (m *Metrics) RecordEventPublished(eventType string) {
	m.safeExecute("RecordEventPublished", func() {
		m.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	})
}

// SetBoardsTotal sets total boards gauge
func (m *Metrics) SetBoardsTotal(count int64) {
	m.safeExecute("SetBoardsTotal", func() {
		m.BoardsTotal.Set(float64(count))
	})
}

// SetLabelsTotal sets total labels gauge
func (m *Metrics) SetLabelsTotal(count int64) {
	m.safeExecute("SetLabelsTotal", func() {
		m.LabelsTotal.Set(float64(count))
	})
}
