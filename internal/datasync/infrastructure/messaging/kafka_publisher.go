// Package messaging 提供同步事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/cognikit/cognikit/pkg/mq"
)

// KafkaPublisher 将同步摘要事件发布到 Kafka
type KafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish 发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	return p.producer.SendMessage(ctx, p.topic, key, event)
}
