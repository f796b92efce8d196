package db

import "time"

// Comment 是读者对文章的评论，随文章一起级联删除。
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:254;not null" json:"email"`
	Text     string    `gorm:"size:1000;not null" json:"text"`
	PostedAt time.Time `gorm:"not null;index" json:"postedAt"`
	PostID   uint      `gorm:"not null;index" json:"postId"`

	Post *Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
