package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDrain_RunsEveryHookInOrder(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	var order []string

	Drain(log, time.Second,
		Hook{Name: "http", Fn: func(context.Context) error { order = append(order, "http"); return nil }},
		Hook{Name: "relay", Fn: func(context.Context) error { order = append(order, "relay"); return errors.New("stuck") }},
		Hook{Name: "pg", Fn: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			order = append(order, "pg")
			return nil
		}},
	)

	assert.Equal(t, []string{"http", "relay", "pg"}, order)
}
