package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PubSubMessage is the envelope published for sales events.
type PubSubMessage struct {
	ReferenceId         int       `json:"reference_id"`
	ReferenceType       string    `json:"reference_type"`
	Action              string    `json:"action"`
	TransactionDateTime time.Time `json:"transaction_date_time"`
	NewObj              []byte    `json:"new_obj"`
	CorrelationId       string    `json:"correlation_id"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

// ErrPubSubDisabled is returned when no topic is configured.
var ErrPubSubDisabled = errors.New("pubsub disabled (PUBSUB_TOPIC not set)")

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

// getPubSubClient lazily builds a single client. Unlike the accounting worker this never
// blocks on retries: a publish that cannot get a client fails and is logged by the caller.
func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Application Default Credentials.
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return pubsubClient, nil
}

// PublishSalesEvent publishes msg to PUBSUB_TOPIC and returns the server-assigned message ID.
func PublishSalesEvent(ctx context.Context, msg PubSubMessage) (string, error) {
	topicName := os.Getenv("PUBSUB_TOPIC")
	if topicName == "" {
		return "", ErrPubSubDisabled
	}
	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data: msgJSON,
		Attributes: map[string]string{
			"reference_type": msg.ReferenceType,
			"action":         msg.Action,
		},
	})
	return result.Get(ctx)
}

// ClosePubSub releases the client on shutdown.
func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
