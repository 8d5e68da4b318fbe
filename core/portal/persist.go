package portal

import (
	"context"

	"github.com/pkg/errors"
)

// persist runs the remote write of a mutation in the background, once the cache
// already reflects it. A failure is logged and never rolled back nor retried.
func (svc *Service) persist(op string, write func(ctx context.Context) error) {
	logArgs := svc.logArgs()
	svc.writes.Add(1)
	go func() {
		defer svc.writes.Done()

		ctx := context.Background()
		if svc.writeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, svc.writeTimeout)
			defer cancel()
		}
		if err := write(ctx); err != nil {
			svc.logger.Error("portal: remote write failed", append([]interface{}{errors.Wrap(err, op)}, logArgs...)...)
		}
	}()
}
