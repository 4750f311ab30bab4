package audit

import "time"

// TimelineFilters narrows the audit timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  int64
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one recorded change.
type TimelineRow struct {
	ID       int64          `json:"id"`
	At       time.Time      `json:"at"`
	ActorID  *int64         `json:"actorId"`
	Actor    string         `json:"actor"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// PagingInfo describes a window without counting the whole table.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result wraps a timeline page.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
