//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/testutil/containers"
)

type PublisherSuite struct {
	suite.Suite
	kafka *containers.RedpandaContainer
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	s.kafka = containers.NewRedpandaContainer(s.T())
}

func (s *PublisherSuite) TestPublishedEntryIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub, err := New([]string{s.kafka.Broker}, "audit-test")
	s.Require().NoError(err)
	defer pub.Close()
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1), "second ensure is a no-op")

	entry := audit.Entry{UserID: "u1", Action: audit.ActionDataExport, SessionID: "session_1_x", Details: map[string]any{"format": "json"}}
	s.Require().NoError(pub.Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.kafka.Broker),
		kgo.ConsumeTopics("audit-test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	var got []*kgo.Record
	fetches.EachRecord(func(r *kgo.Record) { got = append(got, r) })
	s.Require().Len(got, 1)

	s.Equal("u1", string(got[0].Key))
	var decoded audit.Entry
	s.Require().NoError(json.Unmarshal(got[0].Value, &decoded))
	s.Equal(audit.ActionDataExport, decoded.Action)
	s.Equal("json", decoded.Details["format"])
}
