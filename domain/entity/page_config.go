package entity

import (
	"time"
)

// PageConfig is a registry entry for a named page. Only Name participates in
// authorization; the rest is presentation metadata managed elsewhere.
type PageConfig struct {
	ID          int64     `json:"id"`
	PageType    string    `json:"page_type"`
	Name        string    `json:"name"`
	ImgLink     string    `json:"img_link"`
	Parent      string    `json:"parent"`
	Description string    `json:"description"`
	HeaderImg   string    `json:"header_img"`
	HeaderText  string    `json:"header_text"`
	UpdatedBy   string    `json:"updated_by"`
	TenantID    string    `json:"tenant_id"`
	SeqNo       int       `json:"seq_no"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
