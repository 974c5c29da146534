package bus

import "context"

// Publisher publica un payload binario bajo una key de partición. El formato
// del payload lo deciden los adapters; aquí solo viajan bytes.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}
