package model

import "gorm.io/datatypes"

// RenderModel maps to 'render_log'. Payload samples are never stored; Details
// carries the range and labels that were drawn.
type RenderModel struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	SessionID string         `gorm:"column:session_id;index"`
	Seq       uint64         `gorm:"column:seq"`
	Revision  int            `gorm:"column:revision"`
	HomeTeam  string         `gorm:"column:home_team"`
	HomeYear  string         `gorm:"column:home_year"`
	AwayTeam  string         `gorm:"column:away_team"`
	AwayYear  string         `gorm:"column:away_year"`
	Points    int            `gorm:"column:points"`
	Outcome   string         `gorm:"column:outcome;index"`
	Error     string         `gorm:"column:error"`
	Details   datatypes.JSON `gorm:"column:details"`
	Timestamp int64          `gorm:"column:timestamp;index"`
}

func (RenderModel) TableName() string { return "render_log" }

// RenderDetails is the shape stored in RenderModel.Details.
type RenderDetails struct {
	Title  string   `json:"title,omitempty"`
	XLabel string   `json:"x_label,omitempty"`
	YLabel string   `json:"y_label,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}
