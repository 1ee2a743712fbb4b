package models

import "time"

// ChartPoint anchors a drawing to a bar.
type ChartPoint struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

type ChartLine struct {
	Kind  string     `json:"kind"`
	From  ChartPoint `json:"from"`
	To    ChartPoint `json:"to"`
	Label string     `json:"label,omitempty"`
	Color string     `json:"color"`
	Style string     `json:"style,omitempty"`
}

type ChartBox struct {
	Kind      string    `json:"kind"`
	Top       float64   `json:"top"`
	Bottom    float64   `json:"bottom"`
	FromIndex int       `json:"from_index"`
	ToIndex   int       `json:"to_index"`
	FromTime  time.Time `json:"from_time"`
	ToTime    time.Time `json:"to_time"`
	Label     string    `json:"label,omitempty"`
	Color     string    `json:"color"`
}

type ChartMarker struct {
	Kind  string     `json:"kind"`
	At    ChartPoint `json:"at"`
	Label string     `json:"label,omitempty"`
	Color string     `json:"color"`
}

// ChartOverlay is display-only; nothing reads it back into the analysis.
type ChartOverlay struct {
	Lines   []ChartLine   `json:"lines"`
	Boxes   []ChartBox    `json:"boxes"`
	Markers []ChartMarker `json:"markers"`
}
