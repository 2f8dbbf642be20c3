package constants

import "time"

const (
	CHANNEL_SIZE      = 100             // 通道大小
	REDIS_TIMEOUT     = 1               // redis timeout (分钟)
	RECONNECT_DELAY   = 5 * time.Second // 聊天连接断开后的默认重连间隔
	REQUEST_TIMEOUT   = 10 * time.Second
	WS_WRITE_TIMEOUT  = 10 * time.Second
	ACCESS_TOKEN_KEY  = "accessToken" // 凭证存储中访问令牌的 key
	CHAT_TOPIC_PREFIX = "/topic/chat/room/"
)
