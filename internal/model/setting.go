package model

// 站点设置键
const (
	SettingSignature        = "signature"
	SettingLogoStorageID    = "logoStorageId"
	SettingCustomCategories = "customCategories"
)

// Setting 站点设置（扁平键值，值由使用方自行解析）
type Setting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Key   string `json:"key" gorm:"size:100;not null;uniqueIndex:idx_settings_key"`
	Value string `json:"value" gorm:"type:text"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
