package models

import "time"

// ReadStatus is the per-issue reading state. ChangedAt is stamped in UTC on
// every local mutation and is the single source of truth for conflict
// resolution against the remote service.
type ReadStatus struct {
	IsRead      bool      `json:"isRead"`
	CurrentPage int       `json:"currentPage"`
	ChangedAt   time.Time `json:"changedAt"`
}

type Publisher struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`

	// VolumeCount is computed from the volumes table, never stored.
	VolumeCount int `json:"volumeCount"`
}

type Volume struct {
	ID          string `json:"id"`
	PublisherID string `json:"publisherId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	StartYear   int    `json:"startYear,omitempty"`

	// IssueCount and Status are aggregates over the volume's issues,
	// computed at query time. A volume is read iff all its issues are
	// read; its ChangedAt is the max over its issues.
	IssueCount int              `json:"issueCount"`
	Status     VolumeReadStatus `json:"readStatus"`
}

type VolumeReadStatus struct {
	IsRead    bool       `json:"isRead"`
	ChangedAt *time.Time `json:"changedAt,omitempty"`
}

type Issue struct {
	ID          string     `json:"id"`
	VolumeID    string     `json:"volumeId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	FileName    string     `json:"fileName,omitempty"`
	FileURL     string     `json:"fileUrl,omitempty"`
	Status      ReadStatus `json:"readStatus"`
}

// CachedComic tracks one locally downloaded comic file. A row exists iff the
// file is physically present in the comics cache directory.
type CachedComic struct {
	IssueID  string `json:"issueId"`
	FileName string `json:"fileName"`
	Readable bool   `json:"readable"`
	Unpacked bool   `json:"unpacked"`
}

// CachedIssue joins an issue with its optional cached comic.
type CachedIssue struct {
	Issue Issue        `json:"issue"`
	Comic *CachedComic `json:"comic,omitempty"`
}
