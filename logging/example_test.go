package logging_test

import (
	"context"
	"fmt"
	"log"

	"github.com/temify/core/config"
	"github.com/temify/core/event"
	"github.com/temify/core/logging"
)

// Wires configuration, logging and the bus together at process start.
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log)

	bus := event.NewBus(cfg.BusOptions(logger)...)
	bus.Subscribe("streak.extended", event.Func(func(_ context.Context, ev event.Event) error {
		fmt.Println("streak for", ev.PlayerID)
		return nil
	}))

	bus.Emit(context.Background(), event.New("streak.extended", "player-7", nil))
	// Output: streak for player-7
}
