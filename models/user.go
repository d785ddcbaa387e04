package models

// 角色定义
const (
	RoleAdmin    = "admin"
	RoleVillager = "villager"
)

// User 用户模型，对应 users 表
// Password 为空表示该账号未设置密码，登录时不校验
type User struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Username  string `json:"username" gorm:"column:username;size:64;uniqueIndex;not null"`
	Password  string `json:"-" gorm:"column:password;size:128"`
	Avatar    string `json:"avatar" gorm:"column:avatar;size:512"`
	Role      string `json:"role" gorm:"column:role;size:32;default:villager"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword 是否设置了登录密码
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// Identity 经过令牌校验的调用方身份
type Identity struct {
	UserID int64
	Role   string
	Name   string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
