package config

import (
	"github.com/iudanet/facialanalyzer/internal/server/notify"
)

// SMTPSettings converts the SMTP section for notify.NewSMTPMailer.
func (c *Config) SMTPSettings() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:        c.SMTP.Host,
		Port:        c.SMTP.Port,
		Username:    c.SMTP.User,
		Password:    c.SMTP.Password,
		From:        c.EmailFrom,
		Timeout:     c.NotifyTimeout,
		ImplicitTLS: c.SMTP.Secure,
	}
}

// KafkaSettings converts the Kafka section for the publisher and the consumer.
func (c *Config) KafkaSettings() notify.KafkaConfig {
	return notify.KafkaConfig{
		Brokers:  c.Kafka.Brokers,
		Topic:    c.Kafka.Topic,
		GroupID:  c.Kafka.GroupID,
		Username: c.Kafka.Username,
		Password: c.Kafka.Password,
		TLS:      c.Kafka.TLS,
		Timeout:  c.NotifyTimeout,
	}
}

// Links returns the client URL builder for email links.
func (c *Config) Links() notify.Links {
	return notify.Links{ClientURL: c.ClientURL}
}
