package report

// Memory keeps tables and charts in memory. Tests use it in place of Dir.
type Memory struct {
	Tables map[string]Table
	Charts map[string]Chart
	// ChartErr, when set, is returned by every RenderChart call.
	ChartErr error
}

// NewMemory returns an empty in-memory reporter.
func NewMemory() *Memory {
	return &Memory{Tables: map[string]Table{}, Charts: map[string]Chart{}}
}

// WriteTable implements Reporter.
func (m *Memory) WriteTable(name string, t Table) error {
	m.Tables[name] = t
	return nil
}

// RenderChart implements Reporter.
func (m *Memory) RenderChart(name string, c Chart) error {
	if m.ChartErr != nil {
		return m.ChartErr
	}
	m.Charts[name] = c
	return nil
}
