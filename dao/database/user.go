package database

import (
	"context"
	"errors"
	"fmt"

	"teacreek/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrorUserExist 用户名已被占用（唯一索引冲突）
var ErrorUserExist = errors.New("用户已存在")

// passwordCost bcrypt 计算强度，测试中会调低
var passwordCost = bcrypt.DefaultCost

// encryptPassword 对密码进行加密 (使用 bcrypt)
func encryptPassword(oPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(oPassword), passwordCost)
	return string(hash), err
}

// CheckPassword 校验明文密码与用户保存的哈希是否一致
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// InsertUser 插入新用户，非空密码会先做哈希
// DAO 层只返回错误，不打印日志，由上层统一处理
func (s *Store) InsertUser(ctx context.Context, user *models.User) (err error) {
	if user.Password != "" {
		user.Password, err = encryptPassword(user.Password)
		if err != nil {
			return fmt.Errorf("encrypt password failed: %w", err)
		}
	}

	err = s.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrorUserExist
		}
		return fmt.Errorf("insert user failed: %w", err)
	}
	return nil
}

// GetUserByUsername 根据用户名查询用户，查不到返回 nil, nil
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := s.db.WithContext(ctx).Where("username = ?", username).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return user, nil
}

// GetUserByID 根据用户ID查询用户，查不到返回 nil, nil
func (s *Store) GetUserByID(ctx context.Context, uid int64) (*models.User, error) {
	user := new(models.User)
	err := s.db.WithContext(ctx).Where("id = ?", uid).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return user, nil
}

// EnsureUser 用户名不存在时创建该用户，返回是否新建
// 用于启动时预置管理员账号
func (s *Store) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	existing, err := s.GetUserByUsername(ctx, user.Username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*user = *existing
		return false, nil
	}
	if err = s.InsertUser(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
