package metrics

// IncrementFormCreated increments form creation counter
func (m *Metrics) IncrementFormCreated() {
	m.safeExecute("IncrementFormCreated", func() {
		m.FormCreatedTotal.Inc()
	})
}

// IncrementResponseSubmitted increments response submission counter
func (m *Metrics) IncrementResponseSubmitted() {
	m.safeExecute("IncrementResponseSubmitted", func() {
		m.ResponseSubmittedTotal.Inc()
	})
}

// SetFormsTotal sets total forms gauge
func (m *Metrics) SetFormsTotal(count int64) {
	m.safeExecute("SetFormsTotal", func() {
		m.FormsTotal.Set(float64(count))
	})
}

// SetResponsesTotal sets total responses gauge
func (m *Metrics) SetResponsesTotal(count int64) {
	m.safeExecute("SetResponsesTotal", func() {
		m.ResponsesTotal.Set(float64(count))
	})
}
