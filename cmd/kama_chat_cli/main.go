package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"kama_group_client/internal/api"
	"kama_group_client/internal/config"
	"kama_group_client/internal/credential"
	myredis "kama_group_client/internal/dao/redis"
	"kama_group_client/internal/infrastructure/logger"
	"kama_group_client/internal/model"
	"kama_group_client/internal/service/authz"
	"kama_group_client/internal/service/chat"
	"kama_group_client/internal/service/room"
	"kama_group_client/pkg/errorx"

	"go.uber.org/zap"
)

const usage = `命令:
  <文本>              发送消息
  /image <url> [说明]  发送图片
  /file <url> [说明]   发送文件
  /delete <消息ID>     删除消息（作者或组长）
  /perm               查看当前角色和权限
  /refresh            重新加载权限
  /list               打印消息列表
  /quit               退出`

func main() {
	configPath := flag.String("config", "", "配置文件路径，为空时按默认路径查找")
	groupID := flag.Int64("group", 0, "群组 ID，默认取配置 clientConfig.groupId")
	roomID := flag.Int64("room", 0, "聊天室 ID，为 0 时打开群聊房间")
	with := flag.Int64("with", 0, "与该用户单聊（自动创建或找到已有房间）")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		config.SetConfig(c)
		conf = c
	}
	if *groupID == 0 {
		*groupID = conf.ClientConfig.GroupId
	}

	// 2. 初始化日志，控制台留给交互输出
	if err := logger.Init(&conf.LogConfig, logger.ModeCLI); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 凭证存储和 REST 客户端
	tokens, err := openTokenStore(ctx, conf)
	if err != nil {
		log.Fatalf("open credential store failed: %v", err)
	}
	client := api.NewClient(conf.ClientConfig.ApiBaseURL, config.Seconds(conf.ClientConfig.RequestTimeout), tokens)
	if _, err := credential.Token(ctx, tokens); err != nil {
		rsp, err := client.Login(ctx, conf.ClientConfig.UserId, conf.CredentialConfig.Password)
		if err != nil {
			log.Fatalf("登录失败: %s", errorx.Message(err))
		}
		fmt.Printf("已登录: %s (%d)\n", rsp.UserName, rsp.UserId)
	}

	// 4. 权限缓存
	cache := authz.NewCache(client)
	if err := cache.Initialize(ctx, *groupID); err != nil {
		fmt.Println(errorx.Message(err))
	} else {
		printPermissions(cache)
	}

	// 5. 选择房间
	resolver := room.NewResolver(client)
	target, err := resolveRoom(ctx, resolver, *groupID, conf.ClientConfig.UserId, *roomID, *with)
	if err != nil {
		log.Fatalf("打开聊天室失败: %s", errorx.Message(err))
	}

	// 6. 实时连接
	printer := &messagePrinter{}
	manager := chat.NewManager(chat.Options{
		URL:      conf.ClientConfig.WsURL,
		RoomID:   target,
		UserID:   conf.ClientConfig.UserId,
		Tokens:   tokens,
		Retry:    chat.RetryPolicyFromConfig(conf.ChatConfig),
		OnChange: printer.onChange,
	})
	defer manager.Close()
	if err := manager.Open(ctx); err != nil {
		log.Fatalf("连接聊天室失败: %s", errorx.Message(err))
	}
	fmt.Printf("已进入聊天室 %d\n%s\n", target, usage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-manager.Done():
			fmt.Println("聊天连接已断开")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := runCommand(ctx, line, manager, cache, conf.ClientConfig.UserId); quit {
				return
			}
		}
	}
}

func openTokenStore(ctx context.Context, conf *config.Config) (credential.TokenStore, error) {
	var store credential.TokenStore
	switch conf.CredentialConfig.Store {
	case "redis":
		rdb, err := myredis.NewClient(ctx, conf.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = myredis.NewTokenStore(rdb, conf.CredentialConfig.KeyPrefix)
	default:
		store = credential.NewMemoryStore("")
	}
	if token := conf.CredentialConfig.AccessToken; token != "" {
		if err := store.SetAccessToken(ctx, token); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func resolveRoom(ctx context.Context, resolver *room.Resolver, groupID, selfID, roomID, with int64) (int64, error) {
	switch {
	case roomID != 0:
		return roomID, nil
	case with != 0:
		return resolver.OpenDirectRoom(ctx, groupID, selfID, with, "")
	default:
		r, err := resolver.GroupRoom(ctx, groupID)
		return r.RoomID, err
	}
}

// runCommand 执行一行输入，返回 true 表示退出
func runCommand(ctx context.Context, line string, manager *chat.Manager, cache *authz.Cache, selfID int64) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		report(manager.Send(ctx, line))
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/image", "/file":
		if len(fields) < 2 {
			fmt.Println(usage)
			return false
		}
		msgType := model.MessageImage
		if fields[0] == "/file" {
			msgType = model.MessageFile
		}
		report(manager.SendAttachment(ctx, msgType, strings.Join(fields[2:], " "), fields[1]))
	case "/delete":
		if len(fields) != 2 {
			fmt.Println(usage)
			return false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("消息 ID 必须是数字")
			return false
		}
		msg, ok := findMessage(manager.Messages(), id)
		if !ok {
			fmt.Printf("消息 %d 不在当前列表中\n", id)
			return false
		}
		if err := authz.RequireDelete(cache, selfID, msg.SenderID); err != nil {
			fmt.Println(errorx.Message(err))
			return false
		}
		report(manager.Delete(ctx, id))
	case "/perm":
		printPermissions(cache)
	case "/refresh":
		if err := cache.Refresh(ctx); err != nil {
			fmt.Println(errorx.Message(err))
			return false
		}
		printPermissions(cache)
	case "/list":
		for _, msg := range manager.Messages() {
			fmt.Println(formatMessage(msg))
		}
	default:
		fmt.Println(usage)
	}
	return false
}

func findMessage(messages []model.ChatMessage, id int64) (model.ChatMessage, bool) {
	for _, msg := range messages {
		if msg.MessageID == id {
			return msg, true
		}
	}
	return model.ChatMessage{}, false
}

func report(err error) {
	if err != nil {
		fmt.Println(errorx.Message(err))
	}
}

func printPermissions(cache *authz.Cache) {
	membership, ok := cache.Membership()
	if !ok {
		fmt.Printf("权限状态: %s\n", cache.State())
		return
	}
	fmt.Printf("角色: %s\n", membership.Role)
	for _, rule := range cache.Permissions() {
		mark := "×"
		if cache.HasPermission(rule.Type) {
			mark = "√"
		}
		fmt.Printf("  %s %-16s 需要 %s\n", mark, rule.Type, rule.Role)
	}
}

// messagePrinter 只打印新增或删除的那一条
type messagePrinter struct {
	last []model.ChatMessage
}

func (p *messagePrinter) onChange(messages []model.ChatMessage) {
	if len(messages) > len(p.last) {
		fmt.Println(formatMessage(messages[len(messages)-1]))
	} else {
		fmt.Printf("-- 有 %d 条消息被删除\n", len(p.last)-len(messages))
	}
	p.last = messages
}

func formatMessage(msg model.ChatMessage) string {
	text := msg.Content
	if msg.AttachmentURL != "" {
		text = strings.TrimSpace(fmt.Sprintf("[%s %s] %s", msg.MessageType, msg.AttachmentURL, msg.Content))
	}
	return fmt.Sprintf("%s #%d %s: %s", msg.SentAt.Format("15:04:05"), msg.MessageID, msg.SenderName, text)
}
