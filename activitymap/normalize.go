package activitymap

import (
	"strconv"
	"strings"
	"time"

	storefront "github.com/goliatone/go-storefront"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "system"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

// WithChannel overrides the channel tag on the normalized event.
func WithChannel(channel string) Option {
	return func(o *normalizeOptions) {
		if channel = strings.TrimSpace(channel); channel != "" {
			o.channel = channel
		}
	}
}

// WithObjectType overrides the object type on the normalized event.
func WithObjectType(objectType string) Option {
	return func(o *normalizeOptions) {
		if objectType = strings.TrimSpace(objectType); objectType != "" {
			o.objectType = objectType
		}
	}
}

// WithActorFallback sets the actor id used when the event carries no user.
func WithActorFallback(actorID string) Option {
	return func(o *normalizeOptions) {
		if actorID = strings.TrimSpace(actorID); actorID != "" {
			o.actorFallback = actorID
		}
	}
}

// Normalize converts an ActivityEvent into a generic normalized shape.
func Normalize(event storefront.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := options.actorFallback
	if event.UserID > 0 {
		actorID = strconv.FormatInt(event.UserID, 10)
	}

	objectID := strings.TrimSpace(event.Username)
	if objectID == "" && event.UserID > 0 {
		objectID = strconv.FormatInt(event.UserID, 10)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	var metadata map[string]any
	if len(event.Metadata) > 0 {
		metadata = make(map[string]any, len(event.Metadata))
		for k, v := range event.Metadata {
			metadata[k] = v
		}
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   objectID,
		Channel:    options.channel,
		Metadata:   metadata,
		OccurredAt: occurredAt,
	}
}
