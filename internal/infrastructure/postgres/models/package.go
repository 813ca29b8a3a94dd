package models

import "time"

type PackageModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Version     string `gorm:"index:idx_product_version;not null"`
	Description string
	Entry       string `gorm:"default:main.py"`
	FilePath    string
	ProcessPath string
	Size        int64
	MD5         string
	ProductID   string `gorm:"index:idx_product_version;not null"`

	IsDeleted bool `gorm:"index"`
	CreatedAt time.Time
}

func (PackageModel) TableName() string { return "packages" }
