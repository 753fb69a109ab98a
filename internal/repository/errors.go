package repository

import "errors"

var (
	ErrNotParticipant       = errors.New("用户不是该会话的参与者")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrDuplicate            = errors.New("记录已存在")
)
