package models

// Post 帖子模型，对应 posts 表
// UserName / UserAvatar 是发帖时作者信息的快照，作者之后修改资料不会影响已发布的帖子
type Post struct {
	ID          int64    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64    `json:"user_id" gorm:"column:user_id;index"`
	UserName    string   `json:"user_name" gorm:"column:user_name;size:64"`
	UserAvatar  string   `json:"user_avatar" gorm:"column:user_avatar;size:512"`
	Title       string   `json:"title" gorm:"column:title;size:256"`
	Description string   `json:"description" gorm:"column:description;type:text"`
	Department  string   `json:"department" gorm:"column:department;size:64;index"`
	Images      []string `json:"images" gorm:"column:images;type:text;serializer:json"`
	Views       int64    `json:"views" gorm:"column:views;not null;default:0"`
	Likes       int64    `json:"likes" gorm:"column:likes;not null;default:0"`
	CreatedAt   int64    `json:"created_at" gorm:"column:created_at;autoCreateTime:milli;index"`

	// 标题、内容、作者名小写后的拼接，只用于关键字搜索
	SearchText string `json:"-" gorm:"column:search_text;type:text"`

	// 评论数由查询时的子查询计算，不落库
	CommentsCount int64 `json:"comments_count" gorm:"column:comments_count;->;-:migration"`
}

func (Post) TableName() string {
	return "posts"
}

// ApiPostDetail 帖子详情，附带全部评论（按时间倒序）
type ApiPostDetail struct {
	*Post
	Comments []*Comment `json:"comments"`
}

// DepartmentCount 按分类统计的帖子数
type DepartmentCount struct {
	Department string `json:"department" gorm:"column:department"`
	Count      int64  `json:"count" gorm:"column:count"`
}

// AdminStats 管理后台统计数据
type AdminStats struct {
	Total      int64              `json:"total"`
	Today      int64              `json:"today"`
	Categories []*DepartmentCount `json:"categories"`
}
