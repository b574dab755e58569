package app

import (
	"context"

	"git.sr.ht/~exteditor/exteditor/lib/ipc"
	"git.sr.ht/~exteditor/exteditor/lib/registry"
)

// NativeConnector starts the helper command argv for each new channel.
func NativeConnector(argv []string) registry.Connector {
	return func(
		ctx context.Context, onMessage func(*ipc.Message), onDisconnect func(error),
	) (registry.Channel, error) {
		port, err := ipc.ConnectNative(ctx, argv, onMessage, onDisconnect)
		if err != nil {
			return nil, err
		}
		return port, nil
	}
}
