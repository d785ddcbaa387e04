package models

// Comment 评论模型，对应 comments 表
type Comment struct {
	ID         int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	PostID     int64  `json:"post_id" gorm:"column:post_id;index"`
	UserID     int64  `json:"user_id" gorm:"column:user_id;index"`
	UserName   string `json:"user_name" gorm:"column:user_name;size:64"`
	UserAvatar string `json:"user_avatar" gorm:"column:user_avatar;size:512"`
	Content    string `json:"content" gorm:"column:content;type:text"`
	CreatedAt  int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

func (Comment) TableName() string {
	return "comments"
}
