// Package pubsub publishes outbox events to Google Cloud Pub/Sub topics
// that are provisioned outside this service.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

var errNoProject = errors.New("gcp project id is required")

// Client keeps one publisher per topic so batching is shared across calls.
type Client struct {
	api     *pubsub.Client
	project string
	topics  []string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient dials Pub/Sub and fails unless every topic already exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, topics []string, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errNoProject
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.ApplicationCredentials); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	api, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	c, err := wrap(ctx, api, project, topics)
	if err != nil {
		_ = api.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project": project,
			"topics":  c.topics,
		}), "pubsub ready")
	}
	return c, nil
}

func wrap(ctx context.Context, api *pubsub.Client, project string, topics []string) (*Client, error) {
	c := &Client{
		api:        api,
		project:    project,
		publishers: map[string]*pubsub.Publisher{},
	}
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			c.topics = append(c.topics, t)
		}
	}
	if len(c.topics) == 0 {
		return nil, errors.New("at least one pubsub topic is required")
	}
	return c, c.Ping(ctx)
}

// Publisher returns the shared publisher for a topic id or full resource
// name, or nil when the name cannot be resolved.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	if c == nil || c.api == nil {
		return nil
	}
	name := resourceName(c.project, topic)
	if name == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.publishers[name]
	if !ok {
		p = c.api.Publisher(name)
		c.publishers[name] = p
	}
	return p
}

// Ping checks that every configured topic still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("pubsub client not initialized")
	}
	for _, t := range c.topics {
		name := resourceName(c.project, t)
		_, err := c.api.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
		switch {
		case status.Code(err) == codes.NotFound:
			return fmt.Errorf("topic %s does not exist", name)
		case err != nil:
			return fmt.Errorf("get topic %s: %w", name, err)
		}
	}
	return nil
}

// Close flushes pending publishes before closing the connection.
func (c *Client) Close() error {
	if c == nil || c.api == nil {
		return nil
	}
	c.mu.Lock()
	for name, p := range c.publishers {
		p.Stop()
		delete(c.publishers, name)
	}
	c.mu.Unlock()
	return c.api.Close()
}

func resourceName(project, topic string) string {
	topic = strings.TrimSpace(topic)
	switch {
	case topic == "":
		return ""
	case strings.HasPrefix(topic, "projects/") && strings.Contains(topic, "/topics/"):
		return topic
	case project == "":
		return ""
	}
	return "projects/" + project + "/topics/" + topic
}
