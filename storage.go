package penpal

import "context"

// Keys of the persisted session state.
const (
	KeyEssay        = "penpalEssay"
	KeyMessages     = "penpalMessages"
	KeyActiveTab    = "penpalActiveTab"
	KeyShowFeedback = "penpalShowFeedback"
	KeyTheme        = "theme"
)

// Storage is a string key-value store. Get returns ErrNotFound for a missing
// key; callers treat that as "use the default".
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
