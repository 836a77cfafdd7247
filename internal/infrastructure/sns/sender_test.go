package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard-api/internal/domain"
)

type fakePublisher struct {
	got *sns.PublishInput
	err error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.got = in
	return &sns.PublishOutput{}, f.err
}

func TestSendSMS_Transactional(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, (&sender{client: pub}).SendSMS(context.Background(), "+15551234567", "hi"))

	assert.Equal(t, "+15551234567", aws.ToString(pub.got.PhoneNumber))
	assert.Equal(t, "Transactional", aws.ToString(pub.got.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestSendSMS_RejectsNonE164(t *testing.T) {
	pub := &fakePublisher{}
	err := (&sender{client: pub}).SendSMS(context.Background(), "555-1234", "hi")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Nil(t, pub.got)
}

func TestSendSMS_PublishError(t *testing.T) {
	err := (&sender{client: &fakePublisher{err: errors.New("throttled")}}).SendSMS(context.Background(), "+15551234567", "hi")
	assert.ErrorContains(t, err, "throttled")
}
