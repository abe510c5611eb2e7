// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// Paper 论文实体
type Paper struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArxivID      string         `json:"arxiv_id" gorm:"type:varchar(32);uniqueIndex;not null"`
	Title        string         `json:"title" gorm:"type:text;not null"`
	Abstract     string         `json:"abstract,omitempty" gorm:"type:text"`
	RawText      string         `json:"-" gorm:"type:text"`
	Categories   pq.StringArray `json:"categories" gorm:"type:text[]"`
	PDFURL       string         `json:"pdf_url,omitempty" gorm:"type:text"`
	PublishedAt  time.Time      `json:"published_at"`
	PDFProcessed bool           `json:"pdf_processed" gorm:"default:false;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Paper) TableName() string {
	return "papers"
}

// AbsURL 返回论文的 arXiv 摘要页地址
func (p *Paper) AbsURL() string {
	return "https://arxiv.org/abs/" + p.ArxivID
}

// HasCategory 检查论文是否属于指定分类
func (p *Paper) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
