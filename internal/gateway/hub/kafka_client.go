// Package hub
// kafka_client.go
// 核心职责：分布式模式下的事件代理
// 所有网关节点写入同一个 topic，每个节点使用独立的消费组读取全量事件，再推送给本机订阅者
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"kama_group_client/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker 基于 Kafka 的事件代理
type KafkaBroker struct {
	Producer *kafka.Writer // 生产者：按房间 ID 分区，保证同一房间事件有序
	Consumer *kafka.Reader // 消费者
}

// NewKafkaBroker 根据配置创建 Writer 和 Reader
func NewKafkaBroker(conf config.KafkaConfig) *KafkaBroker {
	timeout := config.Seconds(conf.Timeout)
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaBroker{
		Producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.ChatTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.ChatTopic,
			GroupID:        conf.GroupID,
			CommitInterval: timeout,
			StartOffset:    kafka.LastOffset,
		}),
	}
}

// Publish 以房间 ID 作为消息 key
func (k *KafkaBroker) Publish(ctx context.Context, ev RoomEvent) error {
	msg, err := encodeKafkaMessage(ev)
	if err != nil {
		return err
	}
	return k.Producer.WriteMessages(ctx, msg)
}

// Start 消费循环，读取失败时记录日志后继续
func (k *KafkaBroker) Start(ctx context.Context, deliver func(RoomEvent)) {
	for {
		m, err := k.Consumer.ReadMessage(ctx)
		if err != nil {
			// Reader 关闭后返回 io.EOF
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		ev, err := decodeKafkaMessage(m)
		if err != nil {
			zap.L().Warn("skip malformed kafka event",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}
		deliver(ev)
	}
}

// Close 关闭 Writer 和 Reader
func (k *KafkaBroker) Close() {
	if err := k.Producer.Close(); err != nil {
		zap.L().Error("close kafka writer", zap.Error(err))
	}
	if err := k.Consumer.Close(); err != nil {
		zap.L().Error("close kafka reader", zap.Error(err))
	}
}

func encodeKafkaMessage(ev RoomEvent) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.RoomID, 10)),
		Value: value,
	}, nil
}

func decodeKafkaMessage(m kafka.Message) (RoomEvent, error) {
	var ev RoomEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return ev, err
	}
	if ev.RoomID == 0 || len(ev.Frame) == 0 {
		return ev, errors.New("kafka event missing roomId or frame")
	}
	return ev, nil
}
