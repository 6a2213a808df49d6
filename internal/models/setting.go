package models

// AppSetting is a runtime key/value override, e.g. "ai.api_key".
type AppSetting struct {
	Key   string `gorm:"primaryKey;size:128" json:"key"`
	Value string `gorm:"not null" json:"value"`
}
