// Package pubsub connects to Google Cloud Pub/Sub and hands out publishers
// for the order and contest topics.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("no pubsub topics configured")
	errClosed            = errors.New("pubsub client not initialized")
)

type Client struct {
	api       *pubsub.Client
	projectID string
	topics    []string
}

// NewClient dials Pub/Sub and fails unless every configured topic exists.
// Topics are never created here.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	api, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	c := &Client{api: api, projectID: project, topics: topicNames(cfg)}
	if err := c.Ping(ctx); err != nil {
		_ = api.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", c.topics), "pubsub client initialized")
	}
	return c, nil
}

func topicNames(cfg config.PubSubConfig) []string {
	var names []string
	for _, raw := range []string{cfg.OrdersTopic, cfg.ContestTopic} {
		if name := strings.TrimSpace(raw); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Ping looks up every configured topic in parallel.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errClosed
	}
	if len(c.topics) == 0 {
		return errNoTopics
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range c.topics {
		g.Go(func() error { return c.checkTopic(gctx, name) })
	}
	return g.Wait()
}

func (c *Client) checkTopic(ctx context.Context, name string) error {
	full := TopicResourceName(c.projectID, name)
	if full == "" {
		return fmt.Errorf("topic %q not configured", name)
	}
	_, err := c.api.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist", name)
	default:
		return fmt.Errorf("get topic %q: %w", name, err)
	}
}

// Publisher returns nil when the client is closed or name is blank. The
// caller owns the handle and must Stop it.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.api == nil {
		return nil
	}
	full := TopicResourceName(c.projectID, name)
	if full == "" {
		return nil
	}
	return c.api.Publisher(full)
}

func (c *Client) Close() error {
	if c == nil || c.api == nil {
		return nil
	}
	return c.api.Close()
}

// TopicResourceName turns a topic id into projects/<p>/topics/<id>. Full
// resource names pass through.
func TopicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	projectID = strings.TrimSpace(projectID)
	if name == "" || projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + name
}
