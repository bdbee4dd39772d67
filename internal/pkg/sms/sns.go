package sms

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
)

type SNSOptions struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	// SenderID is sent as the AWS.SNS.SMS.SenderID attribute when set.
	SenderID string
}

type snsPublisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends messages with Amazon SNS direct-to-phone publish.
type SNS struct {
	client   snsPublisher
	senderID string
}

func NewSNS(ctx context.Context, opts SNSOptions) (*SNS, error) {
	var cfgOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, err
	}

	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return newSNSWithClient(client, opts.SenderID), nil
}

func newSNSWithClient(client snsPublisher, senderID string) *SNS {
	return &SNS{client: client, senderID: strings.TrimSpace(senderID)}
}

func (s *SNS) Send(ctx context.Context, msg Message) (Result, error) {
	recipient := Normalize(msg.To)
	if recipient == "" {
		return Result{}, &DeliveryError{Kind: KindRequestInvalid, Err: ErrEmptyRecipient}
	}

	in := &sns.PublishInput{
		PhoneNumber: aws.String(recipient),
		Message:     aws.String(msg.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.senderID != "" {
		in.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType: aws.String("String"), StringValue: aws.String(s.senderID),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	out, err := s.client.Publish(ctx, in)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return Result{}, &DeliveryError{Kind: KindProviderRejected, Message: apiErr.ErrorCode(), Err: err}
		}
		return Result{}, &DeliveryError{Kind: KindUnreachable, Err: err}
	}

	return Result{MessageID: aws.ToString(out.MessageId), Status: "Sent", Recipient: recipient}, nil
}
