package rmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_QueueDeclaration_validate(t *testing.T) {
	tests := []struct {
		name    string
		d       QueueDeclaration
		wantErr string
	}{
		{
			"work queue is valid",
			QueueDeclaration{Name: "sign-requests", Type: QueueTypeWork},
			"",
		},
		{
			"fanout exchange is valid",
			QueueDeclaration{Name: "signing-events", Type: QueueTypeFanout},
			"",
		},
		{
			"name is required",
			QueueDeclaration{Type: QueueTypeWork},
			"queue declaration has no name",
		},
		{
			"unknown type is rejected",
			QueueDeclaration{Name: "sign-requests", Type: "topic"},
			"queue 'sign-requests' has unrecognized type 'topic'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func Test_QueueDeclaration_invalid(t *testing.T) {
	// Invalid declarations fail before the connection is touched
	d := QueueDeclaration{Name: "sign-requests", Type: "topic"}

	producer, err := d.NewProducer(nil)
	assert.Error(t, err)
	assert.Nil(t, producer)

	consumer, err := d.NewConsumer(nil)
	assert.Error(t, err)
	assert.Nil(t, consumer)
}
