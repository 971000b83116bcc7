package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dskvich/study-bot-api/pkg/logger"
	"github.com/hashicorp/go-multierror"
)

type Service interface {
	Name() string
	Start(ctx context.Context) error
}

type Group []Service

// Start runs every service and blocks until all of them have returned. The
// first service to fail cancels the others.
func (g Group) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)

	for _, svc := range g {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()

			slog.InfoContext(ctx, "starting service", "service", svc.Name())
			err := svc.Start(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "service stopped with error", "service", svc.Name(), logger.Err(err))

				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", svc.Name(), err))
				mu.Unlock()
			} else {
				slog.InfoContext(ctx, "service stopped", "service", svc.Name())
			}
			cancel()
		}(svc)
	}

	wg.Wait()

	return result.ErrorOrNil()
}
