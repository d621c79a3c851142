package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/client"
	"github.com/oomph-ac/netmove/example/internal/arena"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/omath"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
)

// The following program connects a bot to an example server. The bot runs in circles, jumping
// every few seconds, and prints the interpolated transforms of every other entity.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	addr := settings.DefaultSettings().Client.Address
	if len(os.Args) >= 2 {
		addr = os.Args[1]
	}

	world, err := arena.New()
	if err != nil {
		log.Fatalf("unable to generate arena: %v", err)
	}
	conf := client.ConfigFromSettings(settings.DefaultSettings(), world.Ground)
	conf.Raycast = world.Pillars

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := client.Dial(ctx, log, addr, conf)
	if err != nil {
		log.Fatalf("unable to connect to %v: %v", addr, err)
	}
	defer c.Close()
	go func() {
		if err := c.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("connection lost: %v", err)
			stop()
		}
	}()

	dt := 1 / float64(c.TickRate())
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			stats := c.Stats()
			fmt.Printf("corrections=%d exact=%d mean error=%.4f\n", stats.Corrections, stats.Exact, stats.MeanError)
			return
		case <-ticker.C:
		}
		tick++

		buttons := movement.ButtonForward | movement.ButtonSprint
		if tick%90 == 0 {
			buttons |= movement.ButtonJump
		}
		view := mgl64.QuatRotate(float64(tick)*dt*0.5, omath.Up)
		state, err := c.Step(movement.Input{Buttons: buttons, View: view, Delta: dt})
		if err != nil {
			log.Warnf("step: %v", err)
			continue
		}

		transforms := c.Interpolation().Advance(dt)
		if tick%30 != 0 {
			continue
		}
		fmt.Printf("self %v (%v), latency %v\n", state.Position, state.MoveState, c.Latency())
		for _, tr := range transforms {
			fmt.Printf("entity %d at %v (%v)\n", tr.ID, tr.Position, tr.Mode)
		}
	}
}
