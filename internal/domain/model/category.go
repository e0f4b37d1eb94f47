package model

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(140);uniqueIndex;not null" json:"slug"`
}
