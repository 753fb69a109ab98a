package notify

import (
	"Ringside/internal/api/config"
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// pushEvent 推送服务消费的消息体
type pushEvent struct {
	UserID       string       `json:"userId"`
	Notification Notification `json:"notification"`
	Timestamp    int64        `json:"timestamp"`
}

// KafkaGateway 将通知写入 Kafka, 由下游推送服务投递
type KafkaGateway struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaGateway(producer sarama.SyncProducer, topic string) *KafkaGateway {
	return &KafkaGateway{producer: producer, topic: topic}
}

// NewSyncProducer 按配置创建同步生产者
func NewSyncProducer(kafkaCfg config.KafkaConfig) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(kafkaCfg.Brokers, newSaramaConfig(kafkaCfg))
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return producer, nil
}

func (g *KafkaGateway) SendSingleNotification(_ context.Context, userID string, n Notification) error {
	value, err := json.Marshal(&pushEvent{
		UserID:       userID,
		Notification: n,
		Timestamp:    time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	_, _, err = g.producer.SendMessage(&sarama.ProducerMessage{
		Topic: g.topic,
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(value),
	})
	return errors.Wrap(err, "kafka gateway")
}

func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.RequiredAcks = sarama.RequiredAcks(kafkaCfg.Producer.RequiredAcks)
	if kafkaCfg.Producer.MaxRetry > 0 {
		c.Producer.Retry.Max = kafkaCfg.Producer.MaxRetry
	}
	if kafkaCfg.Producer.Timeout > 0 {
		c.Producer.Timeout = time.Duration(kafkaCfg.Producer.Timeout) * time.Second
	}
	return c
}
