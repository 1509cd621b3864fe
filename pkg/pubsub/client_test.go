package pubsub

import (
	"context"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const project = "sherrys"

func fakeAPI(t *testing.T, topics ...string) *pubsub.Client {
	t.Helper()
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	api, err := pubsub.NewClient(ctx, project, option.WithGRPCConn(conn))
	require.NoError(t, err)

	for _, topic := range topics {
		_, err := api.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: resourceName(project, topic)})
		require.NoError(t, err)
	}
	return api
}

func TestWrapVerifiesTopics(t *testing.T) {
	api := fakeAPI(t, "orders")

	_, err := wrap(context.Background(), api, project, []string{" ", ""})
	assert.ErrorContains(t, err, "at least one")

	_, err = wrap(context.Background(), api, project, []string{"orders", "missing"})
	assert.ErrorContains(t, err, "projects/sherrys/topics/missing does not exist")

	c, err := wrap(context.Background(), api, project, []string{" orders "})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, c.topics)
	require.NoError(t, c.Close())
}

func TestPublisherIsSharedPerTopic(t *testing.T) {
	c, err := wrap(context.Background(), fakeAPI(t, "orders"), project, []string{"orders"})
	require.NoError(t, err)
	defer c.Close()

	first := c.Publisher("orders")
	require.NotNil(t, first)
	assert.Same(t, first, c.Publisher("projects/sherrys/topics/orders"))
	assert.Nil(t, c.Publisher(" "))

	id, err := first.Publish(context.Background(), &pubsub.Message{Data: []byte(`{}`)}).Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "projects/sherrys/topics/orders", resourceName("sherrys", "orders"))
	assert.Equal(t, "projects/other/topics/orders", resourceName("sherrys", "projects/other/topics/orders"))
	assert.Empty(t, resourceName("", "orders"))
	assert.Empty(t, resourceName("sherrys", "  "))
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("orders"))
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
