package models

// ParamLogin 登录请求参数，password 可选
type ParamLogin struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"max=72"`
}

// ParamAdminLogin 管理员登录必须提供密码
type ParamAdminLogin struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

// ParamSubmit 发布帖子参数
type ParamSubmit struct {
	Title       string   `json:"title" binding:"required,max=256"`
	Description string   `json:"description"`
	Department  string   `json:"department" binding:"required,max=64"`
	Images      []string `json:"images" binding:"omitempty,max=9,dive,required"`
}

// ParamComment 发表评论参数
type ParamComment struct {
	Content string `json:"content" binding:"required"`
}

// ParamCommentWithPost 兼容旧版 POST /api/comments，帖子 ID 放在请求体中
type ParamCommentWithPost struct {
	PostID  int64  `json:"postId" binding:"required,gt=0"`
	Content string `json:"content" binding:"required"`
}

// ParamLike 点赞/取消点赞
// 使用指针以便区分 false 和未传
type ParamLike struct {
	IsLiked *bool `json:"isLiked" binding:"required"`
}

// ParamFeed 帖子列表查询参数
// Tag 为空或为 "全部" 时不按分类过滤；Size 为 0 时不分页
type ParamFeed struct {
	Tag    string `form:"tag"`
	Search string `form:"search"`
	UserID int64  `form:"user_id" binding:"omitempty,gt=0"`
	Page   int    `form:"page" binding:"omitempty,gte=1"`
	Size   int    `form:"size" binding:"omitempty,gte=1,lte=100"`
}

// TagAll 表示不过滤分类
const TagAll = "全部"

// FeedQuery 传给存储层的帖子列表查询条件
type FeedQuery struct {
	Department       string
	Search           string
	UserID           int64
	PinnedDepartment string // 为空表示不置顶
	Offset           int
	Limit            int // 0 表示不限制
}
