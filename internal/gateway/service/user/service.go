// Package user 处理开发网关的登录
package user

import (
	"context"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/dto/respond"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// userInfoService 用户业务逻辑实现
type userInfoService struct {
	repos *repository.Repositories
}

// NewUserService 构造函数，注入 Repository 依赖
func NewUserService(repos *repository.Repositories) *userInfoService {
	return &userInfoService{repos: repos}
}

// Login 密码登录，成功后签发 Access Token
func (u *userInfoService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByID(ctx, req.UserId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.Int64("user_id", req.UserId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Id, user.Name)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("user login", zap.Int64("user_id", user.Id))
	return &respond.LoginRespond{
		UserId:      user.Id,
		UserName:    user.Name,
		AccessToken: accessToken,
	}, nil
}
