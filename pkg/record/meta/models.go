package meta

import "gorm.io/datatypes"

// RecordModel 是 record.Record 在关系型数据库中的投影
// (kind, name) 是联合主键
type RecordModel struct {
	Kind string `gorm:"primaryKey;type:varchar(32)"`
	Name string `gorm:"primaryKey;type:varchar(255)"`
	Type string `gorm:"type:varchar(64)"`
	Path string `gorm:"type:text"`

	// NarHash 建索引，方便按哈希反查是哪个包
	NarHash string `gorm:"index;type:varchar(128)"`

	// Metadata: 其余的 metadata 键值，JSON 存储
	Metadata datatypes.JSON

	// Unix 秒；不用 UpdatedAt，避免 GORM 在 upsert 时自动改写
	Timestamp int64 `gorm:"index"`
}

// TableName 强制指定表名
func (RecordModel) TableName() string {
	return "narhash_records"
}
