// Package notify publishes account verification messages to an SNS topic.
// A subscriber (e-mail lambda) turns each message into a mail.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// VerificationMessage is the JSON body published for each registration.
type VerificationMessage struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Link      string `json:"verification_link"`
	Token     string `json:"token"`
}

// Publisher dispatches verification messages.
type Publisher interface {
	PublishVerification(ctx context.Context, msg VerificationMessage) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher implements Publisher with a single topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

var _ Publisher = (*SNSPublisher)(nil)

// NewSNSPublisher creates a publisher for topicARN.
func NewSNSPublisher(awsCfg aws.Config, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(awsCfg), topicARN: topicARN}
}

// PublishVerification sends msg once; there is no retry.
func (p *SNSPublisher) PublishVerification(ctx context.Context, msg VerificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode verification message: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("Verify your email"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String("user.registered")},
		},
	})
	if err != nil {
		return fmt.Errorf("publish verification for %s: %w", msg.Email, err)
	}
	return nil
}
