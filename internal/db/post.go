package db

import "time"

// Post 定义了文章模型
//
// Author 与 Category 指针只用于声明外键约束，查询时不会预加载。
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	FeaturedImage   *string    `gorm:"size:500" json:"featuredImage,omitempty"`
	MetaTitle       *string    `gorm:"size:150" json:"metaTitle,omitempty"`
	MetaDescription *string    `gorm:"size:300" json:"metaDescription,omitempty"`
	MetaKeywords    *string    `gorm:"size:250" json:"metaKeywords,omitempty"`
	Slug            string     `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	ViewCount       int64      `gorm:"not null;default:0" json:"viewCount"`
	PublishedAt     time.Time  `gorm:"not null;index" json:"publishedAt"`
	ModifiedAt      *time.Time `json:"modifiedAt,omitempty"`
	AuthorID        uint       `gorm:"not null;index" json:"authorId"`
	CategoryID      uint       `gorm:"not null;index" json:"categoryId"`

	Author   *Author   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Category *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// SEOTitle 返回页面标题，未设置 MetaTitle 时回退到文章标题。
func (p Post) SEOTitle() string {
	if p.MetaTitle != nil && *p.MetaTitle != "" {
		return *p.MetaTitle
	}
	return p.Title
}
