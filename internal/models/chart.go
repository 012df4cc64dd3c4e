package models

type ChartType string

const (
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartTable ChartType = "table"
	ChartPie   ChartType = "pie"
	ChartNone  ChartType = "none"
)

// ChartConfig describes how a query result should be rendered.
type ChartConfig struct {
	Type    ChartType `json:"type"`
	XAxis   string    `json:"xAxis,omitempty"`
	YAxis   string    `json:"yAxis,omitempty"`
	Title   string    `json:"title,omitempty"`
	XLabel  string    `json:"xLabel,omitempty"`
	YLabel  string    `json:"yLabel,omitempty"`
	Colors  []string  `json:"colors,omitempty"`
	Stacked bool      `json:"stacked,omitempty"`
}
